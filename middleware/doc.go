// Package middleware provides net/http plumbing around the adauth
// engine: credential extraction from cookies and bearer headers, the
// session cookie writer, and a route guard that redirects browsers
// according to a route table instead of returning bare 401s.
package middleware
