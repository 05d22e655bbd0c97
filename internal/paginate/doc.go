/*
Package paginate decides whether an extraction chain continues.

# Overview

After a unit's records are extracted, a resolver inspects the page or
response for a way to reach the next page. HTML resolution tries an
ordered list of next-link strategies (rel=next, aria labels, pagination
containers, link text, numeric pagination); API resolution branches on
the server's pagination idiom (explicit next URL, declared total pages,
offset/limit, page parameter).

Both resolvers are terminal on "no next": a chain ends by returning no
continuation, never by erroring. Individual strategy failures are
swallowed, collected and reported as annotations on the batch that was
already produced.

# Loop prevention

State threads the visited URL and offset sets through a continuation
chain. A computed next target that was already visited forces
exhaustion regardless of what the page advertises. State is
copy-on-write: emitting a continuation never mutates the state of the
unit that produced it, so chains stay auditable step by step. One
chain's state is never shared with another chain.
*/
package paginate
