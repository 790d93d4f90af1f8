// Package backend is the client of the external notes service: the parser
// that turns note text into a relation graph, and the query endpoint.
//
// # Protocol
//
// Both endpoints take a JSON POST:
//
//	POST /draw  {"notes": "alice knows bob\n..."}
//	  -> {"nodes": [{"name": "alice"}, ...],
//	      "links": [{"source": 0, "target": "bob", "name": "knows", "lineno": 0}]}
//
//	POST /query {"query": "alice knows bob"}
//	  -> {"results": ["...", "..."]}
//
// Link endpoints may be node indices or names; [graph.Resolve] binds them.
//
// # Errors
//
// Transport failures are NETWORK_ERROR (retried with backoff on
// connection errors and 5xx/429), TIMEOUT when the context deadline hits,
// and INVALID_RESPONSE when the body is not the expected JSON. Empty input
// never reaches the network.
//
// # Asynchronous use
//
// [Client.DrawAsync] and [Client.QueryAsync] run the request on a goroutine
// and deliver exactly one [Result] on the returned channel. Requests are
// not cancelled when a newer one starts; every Result carries a sequence
// number so a consumer can tell which request it answers.
package backend
