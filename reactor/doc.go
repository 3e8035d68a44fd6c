// Copyright (c) 2026
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness-polling primitive behind the
// hioload-reqrep event loop.
//
// The model is deliberately poll(2)-shaped: the caller owns a transient
// slot list rebuilt every iteration, each slot naming a descriptor and the
// readiness it currently cares about, and one Poll call both submits the
// list and collects results in place. Rebuilding per iteration means a
// connection's interest always matches its state with no registration
// window to race against, and error conditions are reported on every slot
// whether requested or not.
//
// Level-triggered semantics are part of the contract: a descriptor that
// stays ready keeps reporting ready on every call.
package reactor
