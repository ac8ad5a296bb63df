// Package client provides a fluent request builder on top of [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] for a base URL with functional options:
//
//	c, err := client.Build("https://api.example.com/v1",
//		client.WithTimeout(10*time.Second),
//		client.WithUserAgent("myapp/1.0"),
//	)
//
// # Building Requests
//
// Each verb method returns a [RequestBuilder] bound to an [Endpoint]. The
// builder is chained and finished with one of the decode calls:
//
//	req := client.Decode[User](
//		c.Get(client.Path("users")).
//			Query(Filter{Status: "active"}).
//			SetInHeader("req-1", header.Custom("X-Request-ID")),
//	)
//
// Query is only honoured by GET, Body and Multipart only by POST, PUT and
// PATCH; on other verbs they do nothing. Values are validated with their
// `validate` tags before they are encoded. Failures never interrupt the
// chain: they are collected and reported when the request starts, without
// touching the network.
//
// # Executing Requests
//
// A [Request] does nothing until [Request.Start] is called, so handlers can
// be registered first:
//
//	req.OnSuccess(func(u User) { ... }).
//		OnFailure(func(err error) { ... })
//	err := req.Start(ctx)
//
// Handlers run on the client's [dispatch.Scheduler], by default a
// [dispatch.Loop] that runs them one at a time in completion order.
// [Request.Wait] blocks until the outcome is known.
//
// [DecodeOptional] yields a nil value instead of failing when the body is
// empty or cannot be decoded; [RequestBuilder.DecodeVoid] ignores the body.
//
// # Errors
//
// Configuration problems wrap [ErrInvalidParameters], undecodable bodies
// [ErrInvalidResponse]. Transport failures are offered to the decoders
// registered with [RequestBuilder.FailureDecode] and otherwise wrap
// [ErrRequestFailed], keeping the [transport.StatusError] reachable through
// [errors.As].
package client
