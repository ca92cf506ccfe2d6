/*
Package domain contains the core models moved through the shipyard pipeline.

It is kept free of I/O and persistence so that every adapter (HTTP, MCP, CLI)
and every store shares the same vocabulary.

# Key Entities

  - SourceEntry: a (path, text) pair, the unit handed to a generator.
  - SourceCollection: an ordered list of entries. Order is the order in which a generator observes its inputs.
  - GeneratorConfig: the closed set of typed configurations, one variant per generator kind.
  - GeneratedArtifact: the named archive bytes returned by a generator, ready for delivery.
*/
package domain
