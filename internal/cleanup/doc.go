// Package cleanup guarantees that no staged artifact outlives its
// request.
//
// The sweep contract is a basename prefix match on the request id,
// applied to files at any depth under the cache root. This is not a
// path glob: directories never match, they are only recursed into.
package cleanup
