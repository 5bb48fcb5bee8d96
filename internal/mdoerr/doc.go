// Package mdoerr defines the typed errors returned while assembling and
// running a coupled model.
//
// Errors fall in three categories that callers tell apart with errors.Is:
//
//   - ErrAssembly: the model itself is wrong (names, connections, units,
//     cycles). Raised before any numeric work starts.
//   - ErrCompute: a component produced a domain error or a non-finite value.
//   - ErrNotConverged: a solver gave up. These are results, not crashes, and
//     a trade study may record them and move on.
package mdoerr
