package cli

import (
	"cmp"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leafstorm/railgen/pkg/snapshot"
	"github.com/leafstorm/railgen/pkg/store"
)

// mongoFlags are the connection flags shared by publish and snapshots.
type mongoFlags struct {
	uri        string
	database   string
	collection string
}

func (f *mongoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.uri, "mongo-uri", "", "MongoDB connection URI (default $RAILGEN_MONGO_URI or config)")
	cmd.Flags().StringVar(&f.database, "database", "", "database name (default railgen)")
	cmd.Flags().StringVar(&f.collection, "collection", "", "collection name (default snapshots)")
}

// openMongo is the store constructor; tests swap it for an in-memory store.
var openMongo = func(ctx context.Context, cfg store.MongoConfig) (store.Store, error) {
	return store.OpenMongo(ctx, cfg)
}

func (c *CLI) openStore(ctx context.Context, f mongoFlags) (store.Store, error) {
	sp := c.newSpinner(ctx, "Connecting to MongoDB")
	defer sp.Stop()
	return openMongo(ctx, store.MongoConfig{
		URI:        cmp.Or(f.uri, c.Config.Mongo.URI),
		Database:   cmp.Or(f.database, c.Config.Mongo.Database),
		Collection: cmp.Or(f.collection, c.Config.Mongo.Collection),
	})
}

// publishCommand stores a snapshot of the network.
func (c *CLI) publishCommand() *cobra.Command {
	var flags mongoFlags
	cmd := &cobra.Command{
		Use:               "publish DATA",
		Short:             "Store a snapshot of a network in MongoDB",
		Args:              requireData(1),
		ValidArgsFunction: completeData(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := c.load(ctx, args[0], false)
			if err != nil {
				return err
			}
			snap := snapshot.New(l.net)

			st, err := c.openStore(ctx, flags)
			if err != nil {
				return err
			}
			defer st.Close(context.WithoutCancel(ctx))

			if err := st.Publish(ctx, snap); err != nil {
				return err
			}
			c.ui.success("Published %s", StyleHighlight.Render(snap.Name))
			c.ui.keyValue("id", snap.ID)
			c.ui.keyValue("digest", snap.Digest[:12])
			c.ui.nextStep("List history", fmt.Sprintf("%s snapshots %q", appName, snap.Name))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// snapshotsCommand lists published snapshots of a network, newest first.
func (c *CLI) snapshotsCommand() *cobra.Command {
	var (
		flags mongoFlags
		limit int
		out   string
	)
	cmd := &cobra.Command{
		Use:   "snapshots NAME",
		Short: "List published snapshots of a network",
		Long: `List published snapshots of the named network, newest first. With -o the
latest snapshot is written to the file as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx, flags)
			if err != nil {
				return err
			}
			defer st.Close(context.WithoutCancel(ctx))

			if out != "" {
				latest, err := st.Latest(ctx, args[0])
				if err != nil {
					return err
				}
				data, err := snapshot.Marshal(latest)
				if err != nil {
					return err
				}
				return c.writeOutput(out, data)
			}

			snaps, err := st.List(ctx, args[0], limit)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				c.ui.info("No snapshots of %s", args[0])
				return nil
			}
			for _, s := range snaps {
				c.ui.keyValue(s.CreatedAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%s  %s  %d stations, %d lines", s.ID, s.Digest[:12], s.Stations, s.Lines))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum snapshots to list")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the latest snapshot to this file")
	return cmd
}
