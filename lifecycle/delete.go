package lifecycle

import "context"

// Delete stops uuid if running, captures its clone's origin snapshot, destroys the clone
// and then the origin snapshot, and removes its index entry.
func (e *Engine) Delete(ctx context.Context, uuid string) error {
	c, err := e.DB.Get(ctx, uuid)
	if err != nil {
		return err
	}
	if c.Outer != nil {
		if err := e.Stop(ctx, uuid); err != nil {
			return err
		}
	}

	cloneTarget := c.Index.RootDataset
	origin, err := e.Storage.Origin(ctx, cloneTarget)
	if err != nil {
		return err
	}

	if err := e.Storage.Destroy(ctx, cloneTarget); err != nil {
		return err
	}
	if origin != "" {
		if err := e.Storage.Destroy(ctx, origin); err != nil {
			return err
		}
	}

	_, err = e.DB.Remove(ctx, uuid)
	return err
}
