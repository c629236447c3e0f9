// Package sqlite persists the device-local best score of the jump client.
package sqlite
