// Package shutdown coordinates graceful teardown of the gateway.
//
// Components register named hooks at startup; on SIGINT or SIGTERM the
// handler runs them in reverse registration order under a single
// deadline, logging each hook as it completes.
package shutdown
