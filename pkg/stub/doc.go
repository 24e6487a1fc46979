// Package stub provides a client that answers requests from registered stubs.
//
// Stubs are registered for a request pattern and matched by exact equality on
// the fields selected by the client's Strictness. The URL always takes part in
// matching; method, body and headers take part depending on the strictness:
//
//	Strictness        method     body       headers
//	Full              required   required   required
//	BodyMethodURL     required   required   forbidden
//	HeadersMethodURL  required   forbidden  required
//	MethodURL         required   forbidden  forbidden
//	URL               forbidden  forbidden  forbidden
//
// A pattern must set exactly the fields its strictness requires; anything
// else is rejected with a RegistrationError when the stub is registered, not
// when a request arrives.
//
// Requests without a matching stub are handled according to Default:
// PerformRequest forwards them to the live transport, Error returns an
// UnmatchedError naming the URL, and Panic panics. Panic is meant for test
// suites where an unstubbed request is a programming mistake.
//
// # Usage
//
//	c, _ := stub.New(stub.Settings{Default: stub.DefaultError, Strictness: stub.MethodURL})
//	err := c.Stub("http://example.com/mocking").
//		Method("GET").
//		Response().
//		BodyString("Mocking is fun!").
//		Mock()
//
//	resp, err := client.Get(c, "http://example.com/mocking").Send(ctx)
//
// Stubs can also be loaded from YAML fixture files with LoadFile and LoadGlob.
package stub
