/*
Package job defines scraping job files and loads them from disk.

A job names a set of sources to extract: each source is a starting URL
with its mode, extraction hints and page budget. Job files are YAML,
TOML or JSON, decided by extension. A directory of job files can be
loaded in one call using a glob pattern.

	name: texas-cities
	sources:
	  - url: https://example.org/wiki/Cities
	    mode: html
	    max_pages: 3
	    hints:
	      table_selector: table.wikitable
*/
package job
