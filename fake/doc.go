// Package fake
// Author: momentics <momentics@gmail.com>
//
// Test doubles: a recording sink, a recording handler, and a scripted
// poller for exercising loop logic without sockets.
package fake
