// Package dispatcher is the single entry point for user queries. A pluggable
// Classifier decides between three routes: hand the query to the
// orchestrator for multi-step planning, delegate it to exactly one agent via
// the bus, or answer it directly. Classification never blocks on agents;
// only routing does.
package dispatcher
