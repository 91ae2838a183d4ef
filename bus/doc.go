// Package bus implements the communication bus connecting agents in
// AgentHub: a registry plus router providing request/response correlation,
// timeout and retry semantics, and best-effort broadcast.
//
// A Bus is an explicitly constructed instance passed by dependency
// injection; there is no package-level singleton. Key behaviors:
//
//   - Send returns a Future that resolves with the receiver's correlated
//     response, fails immediately for unknown receivers, and fails with a
//     timeout error when no response arrives in time. In-flight processing
//     is never preempted; a late result is discarded against the already
//     resolved future.
//   - SendAndAwait wraps Send with a retry policy that retries only
//     timeouts and unavailable receivers, never application errors.
//   - Broadcast fans a notification out to every registered agent except
//     the sender without awaiting responses.
//
// Each agent instance handles at most one message at a time; the bus
// services distinct agents concurrently.
package bus
