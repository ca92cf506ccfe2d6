// Package builtin provides the generators shipped with shipyard and registers
// them in a generator.Catalog.
//
// Every routine parses its sources as Endless Sky data files and writes a
// deflate-compressed zip archive holding a plugin.txt and a data/ folder.
package builtin
