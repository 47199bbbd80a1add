// Package core defines the shared vocabulary of steerflow: the closed set of
// workflow lifecycle events, conversation messages, operator replies and the
// Workflow stream contract that connects an event producer (an orchestration
// engine) to the interactive loop that consumes it.
//
// Events are immutable once emitted and are delivered in production order.
// Consumers dispatch on the concrete event type; the set of variants is
// closed via an unexported marker method so a type switch can be exhaustive.
package core
