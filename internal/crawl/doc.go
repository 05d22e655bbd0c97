/*
Package crawl executes jobs: it walks every source's continuation chain
through the page pipeline and writes one dataset per run.

# Overview

A run seeds one request per job source into a bounded queue drained by
a fixed worker pool. Each request passes through fetch, mode routing
(html table extraction or API normalization), the optional transform
hook, and the dataset sink, then asks the pagination resolver for the
next unit. Chains are sequential; parallelism is across chains.

Problems stay in band: a failed fetch, an unparseable document, or a
pagination strategy failure annotate the unit's batch and the run moves
on. Only a sink or hook setup failure fails the run itself.

# Budget and Filtering

Every chain carries a page budget (source max_pages, else the crawl
default). Continuations past the budget, outside the job's allow
patterns, or already visited are not enqueued.
*/
package crawl
