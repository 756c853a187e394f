// Package natsclient manages NATS connections for governor services. It
// wraps nats.go with a circuit breaker, status reporting, and framework
// metrics so callers never deal with raw connection state.
//
// # Usage
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithName("governor"),
//	    natsclient.WithMetrics(metrics),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	err = client.Publish(ctx, "governor.quality.warning", payload)
//
// # Circuit Breaker
//
// Connection failures accumulate; after the configured threshold the circuit
// opens and Connect returns ErrCircuitOpen immediately. The backoff doubles
// on each consecutive circuit round up to the configured maximum, after
// which the circuit half-opens and connection attempts are allowed again. A
// successful connection resets the breaker.
//
// # Lifecycle
//
// Close drains outstanding subscriptions before closing the connection,
// bounded by the drain timeout or the context deadline, whichever is
// shorter. Close is idempotent.
package natsclient
