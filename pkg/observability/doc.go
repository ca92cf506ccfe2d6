/*
Package observability exposes the Prometheus metrics recorded by shipyard.

Collectors are registered once on the default registry, the first time any
Record helper runs. Handler serves them in the text exposition format.
*/
package observability
