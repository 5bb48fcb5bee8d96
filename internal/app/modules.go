package app

import (
	"github.com/specialistvlad/hypermdo/internal/registry"
	"github.com/specialistvlad/hypermdo/modules/aero"
	"github.com/specialistvlad/hypermdo/modules/battery"
	"github.com/specialistvlad/hypermdo/modules/compressor"
	"github.com/specialistvlad/hypermdo/modules/hyperloop"
	"github.com/specialistvlad/hypermdo/modules/motor"
	"github.com/specialistvlad/hypermdo/modules/structure"
	"github.com/specialistvlad/hypermdo/modules/tubewall"
	"github.com/specialistvlad/hypermdo/modules/vacuum"
)

// coreModules is the definitive list of all modules that are compiled into
// the hypermdo binary.
var coreModules = []registry.Module{
	&aero.Module{},
	&battery.Module{},
	&compressor.Module{},
	&hyperloop.Module{},
	&motor.Module{},
	&structure.Module{},
	&tubewall.Module{},
	&vacuum.Module{},
}
