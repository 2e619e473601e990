// Package handlers implements the HTTP surface of the clip relay: the
// catch-all relay route that embeds a media URL in the request path,
// the landing and result views, the display-name cookie, health and
// version endpoints, and the request history API.
package handlers
