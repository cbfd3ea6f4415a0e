package receiver

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"savesignal/internal/model"
	"savesignal/internal/signal"
	"savesignal/internal/storage"
)

// SnapshotKey is the object key of a record snapshot.
func SnapshotKey(id string) string {
	return "records/" + id + ".json"
}

// Snapshot mirrors records into object storage: post_save writes the record
// as JSON, post_delete removes it. Other signals and instances are ignored.
func Snapshot(store storage.Store, logger *zap.Logger) signal.Receiver {
	return func(ctx context.Context, ev signal.Event) error {
		rec, ok := ev.Instance.(*model.Record)
		if !ok || rec == nil {
			return nil
		}
		key := SnapshotKey(rec.ID)

		switch ev.Signal {
		case signal.PostSave:
			body, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal snapshot: %w", err)
			}
			info, err := store.Put(ctx, key, body, storage.PutOptions{
				ContentType: "application/json",
				Metadata:    map[string]string{"record-id": rec.ID},
			})
			if err != nil {
				return fmt.Errorf("put snapshot: %w", err)
			}
			logger.Debug("snapshot stored", zap.String("key", info.Key), zap.Int64("size", info.Size))
		case signal.PostDelete:
			if err := store.Delete(ctx, key); err != nil {
				return fmt.Errorf("delete snapshot: %w", err)
			}
			logger.Debug("snapshot removed", zap.String("key", key))
		}
		return nil
	}
}
