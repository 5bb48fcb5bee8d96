// Package varpath parses and formats dotted variable paths such as
// "pod.battery.num_cells" or "tube.thermal.wall.temp_boundary".
//
// A path walks the group tree one segment at a time. The last segment may
// carry an element index ("pod.drag[1]") to address one entry of a vector
// variable.
package varpath
