/*
Package observability provides tools for watching nest processes run.

Every helper works the same way: it registers an OnStateCreate hook on a
*fsm.Process and attaches enter, exit and error handlers to each state, and it
returns a function that detaches the hook again.

  - Tracer prints an indented XML-like trace of entered and exited states.
  - LogHooks emits structured slog records for the same lifecycle.
  - Metrics counts state visits and handler failures with Prometheus.
  - Spans opens an OpenTelemetry span per state lifetime, nested like the stack.
*/
package observability
