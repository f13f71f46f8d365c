package lifecycle

import (
	"context"
	"fmt"

	"github.com/sweeklys/vmadm-go/jailconfig"
	"github.com/sweeklys/vmadm-go/jdb"
	"github.com/sweeklys/vmadm-go/saga"
)

// createState is threaded through the Create saga. Each step only adds fields; nothing
// earlier is ever mutated, so compensations run against whatever state existed right
// before the failing step without needing their own snapshot.
type createState struct {
	cfg         jailconfig.ContainerConfig
	index       jdb.IndexEntry
	snapshot    string
	cloneTarget string
}

// Create materializes a new container from an image via the transactional pipeline
// JDB.insert → Storage.snapshot → Storage.clone → Storage.quota → Lifecycle.init →
// Brand.install, rolling back everything already done on the first failure.
func (e *Engine) Create(ctx context.Context, cfg jailconfig.ContainerConfig) (jdb.IndexEntry, error) {
	cloneTarget := fmt.Sprintf("%s/%s", e.Settings.Pool, cfg.UUID)

	s := saga.Saga[createState]{Steps: []saga.Step[createState]{
		{
			Name: "insert",
			Forward: func(ctx context.Context, st createState) (createState, error) {
				entry, err := e.DB.Insert(ctx, st.cfg, cloneTarget)
				if err != nil {
					return st, err
				}
				st.index = entry
				return st, nil
			},
			Backward: func(ctx context.Context, st createState) error {
				_, err := e.DB.Remove(ctx, st.cfg.UUID)
				return err
			},
		},
		{
			Name: "snapshot",
			Forward: func(ctx context.Context, st createState) (createState, error) {
				source := fmt.Sprintf("%s/%s", e.Settings.Pool, st.cfg.ImageUUID)
				snap, err := e.Storage.Snapshot(ctx, source, st.cfg.UUID)
				if err != nil {
					return st, err
				}
				st.snapshot = snap
				return st, nil
			},
			Backward: func(ctx context.Context, st createState) error {
				return e.Storage.Destroy(ctx, st.snapshot)
			},
		},
		{
			Name: "clone",
			Forward: func(ctx context.Context, st createState) (createState, error) {
				if err := e.Storage.Clone(ctx, st.snapshot, cloneTarget); err != nil {
					return st, err
				}
				st.cloneTarget = cloneTarget
				return st, nil
			},
			Backward: func(ctx context.Context, st createState) error {
				return e.Storage.Destroy(ctx, st.cloneTarget)
			},
		},
		{
			Name: "quota",
			Forward: func(ctx context.Context, st createState) (createState, error) {
				if st.cfg.Quota > 0 {
					if err := e.Storage.Quota(ctx, st.cloneTarget, st.cfg.Quota); err != nil {
						return st, err
					}
				}
				return st, nil
			},
		},
		{
			Name: "init",
			Forward: func(ctx context.Context, st createState) (createState, error) {
				rootDataset := st.index.RootDataset
				if err := e.initJailRoot(ctx, st.cfg, rootDataset); err != nil {
					return st, err
				}
				return st, nil
			},
		},
		{
			Name: "brand.install",
			Forward: func(ctx context.Context, st createState) (createState, error) {
				b, err := e.loadBrand(st.cfg.Brand)
				if err != nil {
					return st, err
				}
				c := jdb.Container{Index: st.index, Config: st.cfg}
				program, args := b.Install.Render(c, e.Settings)
				if program == "" {
					return st, nil
				}
				res, err := e.Exec.Run(ctx, program, args...)
				if err != nil {
					return st, err
				}
				if res.ExitCode != 0 {
					return st, fmt.Errorf("brand install exited %d: %s", res.ExitCode, res.Stderr)
				}
				return st, nil
			},
		},
	}}

	final, err := s.Tell(ctx, createState{cfg: cfg})
	return final.index, err
}
