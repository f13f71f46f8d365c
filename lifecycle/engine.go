package lifecycle

import (
	"github.com/sweeklys/vmadm-go/brand"
	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/hostsettings"
	"github.com/sweeklys/vmadm-go/jdb"
	"github.com/sweeklys/vmadm-go/storage"
)

// Engine wires every component Lifecycle operations drive: the database, the storage
// pool, the host-command seam, and the host settings all of them read from.
type Engine struct {
	DB       *jdb.JDB
	Storage  *storage.Storage
	Exec     hostexec.HostExec
	Settings *hostsettings.Settings
}

// loadBrand resolves the brand descriptor for a container's configured brand name.
func (e *Engine) loadBrand(brandName string) (brand.Brand, error) {
	return brand.Load(brandName, e.Settings)
}
