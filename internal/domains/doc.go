// Package domains gates pipeline entry on a fixed hostname allow-list.
package domains
