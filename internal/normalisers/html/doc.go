// Package html provides a Normaliser implementation for HTML documentation
// pages. It keeps the main content region when one is marked up, drops
// navigation chrome, scripts and styles, and decodes entities. Block
// elements become blank-line separated paragraphs so the chunker can split
// on them.
package html
