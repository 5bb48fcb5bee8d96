// Package tubewall computes the steady-state temperature of the tube wall.
//
// The wall gains heat from the sun and from the exhaust the pods blow into
// the tube, and loses it to the outside air by natural convection and by
// radiation. TubeWallTemp owns the wall temperature as a state whose
// residual is the heat balance, so a Newton group drives it to equilibrium.
package tubewall
