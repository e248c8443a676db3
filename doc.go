// Package serdify decodes JSON into Go values and reports every problem in the
// document at once, as an RFC 7807 problem details object.
//
// A decode never stops at the first mismatch. Each wrong kind, out-of-range
// number or missing required field becomes one InvalidParam carrying a JSON
// Pointer (for example #/users/2/age), and the call fails with all of them.
// Syntax errors are detected before decoding starts and are reported once, as
// a sentence in Error.Detail with line and column.
//
// Design policy:
//   - Keep only public APIs in the root package; parsing lives in
//     internal/engine and the token drivers under source/.
//   - Target descriptions live in package shape; they are derived from Go
//     types or built explicitly.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	type User struct {
//		Name string `json:"name"`
//		Age  uint8  `json:"age"`
//	}
//
//	u, err := serdify.FromString[User](`{"name":"Ann","age":256}`)
//	if e, ok := serdify.AsError(err); ok {
//		body, _ := e.JSON() // {"title":"Your request parameters didn't validate.", ...}
//	}
package serdify
