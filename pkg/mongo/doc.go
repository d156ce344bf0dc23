// Package mongo connects to MongoDB with retries and exposes a health check.
// It is the connection layer for snapshotstore.MongoStore.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := snapshotstore.NewMongoStore[Order](db.Collection("fsm_snapshots"))
//	if err := store.EnsureIndexes(ctx); err != nil {
//	    return err
//	}
package mongo
