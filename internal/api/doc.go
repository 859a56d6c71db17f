// Package api exposes the journal service over HTTP.
package api
