// Package agent contains first-class agent implementations and the shared
// lifecycle plumbing they embed. The package focuses on three concerns:
//
//  1. Identity + guarded state machine (BaseAgent)
//  2. Deterministic utility agents (EchoAgent, SystemAgent, MemoryAgent)
//  3. Model-backed conversational agent (ModelAgent)
//
// Design principles:
//   - Embed BaseAgent; only implement Process plus any custom API
//   - No hidden global state – explicit wiring at construction time
//   - Agents never talk to each other directly; all traffic goes through
//     the bus package
//
// The package intentionally keeps model specifics and memory backends in
// their respective packages to avoid cyclic deps.
package agent
