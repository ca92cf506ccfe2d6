/*
Package generator describes plugin generators and runs them.

A Definition pairs a generator kind with the archive filename it produces, the
schema of its configuration fields and the Routine that builds the archive.
Definitions live in a Catalog.

Validate turns raw, untyped fields (form values, JSON, CLI flags) into the
typed domain.GeneratorConfig for a kind, reporting every invalid field at once.
The Invoker calls a Routine and converts any failure, including a panic, into
a *domain.InvocationError.
*/
package generator
