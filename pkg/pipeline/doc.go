/*
Package pipeline wires the generation flow together.

The Aggregator assembles the source collection of a request: the session's
uploads, optionally preceded by the baseline dataset. The Dispatcher runs one
generation end to end:

	resolve kind -> validate fields -> assemble sources -> invoke -> deliver

Validation failures stop the flow before anything is fetched or invoked, and
an invocation failure stops it before delivery.
*/
package pipeline
