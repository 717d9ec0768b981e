package extract

import (
	"context"

	"github.com/rs/zerolog"
)

// Source adapters give each extraction path a stable name so reports,
// cache keys and snapshots can tell them apart. The workbook and feed
// sources carry a fallback simulator: neither of those upstreams is
// guaranteed to publish inventory snapshots, and the inventory metric
// groups go structurally absent without them.

type WorkbookSource struct {
	reader   *WorkbookReader
	fallback *Simulator
}

func NewWorkbookSource(reader *WorkbookReader, fallback *Simulator) *WorkbookSource {
	return &WorkbookSource{reader: reader, fallback: fallback}
}

func (s *WorkbookSource) Name() string { return "workbook" }

func (s *WorkbookSource) Fetch(ctx context.Context) (Dataset, error) {
	ds, err := s.reader.Read()
	if err != nil {
		return Dataset{}, err
	}
	return SupplementInventory(ds, s.fallback, s.reader.logger), nil
}

type FeedSource struct {
	client   *FeedClient
	fallback *Simulator
}

func NewFeedSource(client *FeedClient, fallback *Simulator) *FeedSource {
	return &FeedSource{client: client, fallback: fallback}
}

func (s *FeedSource) Name() string { return "feed" }

func (s *FeedSource) Fetch(ctx context.Context) (Dataset, error) {
	ds, err := s.client.Dataset(ctx)
	if err != nil {
		return Dataset{}, err
	}
	return SupplementInventory(ds, s.fallback, s.client.logger), nil
}

type SimulatorSource struct {
	sim *Simulator
}

func NewSimulatorSource(sim *Simulator) *SimulatorSource {
	return &SimulatorSource{sim: sim}
}

func (s *SimulatorSource) Name() string { return "demo" }

func (s *SimulatorSource) Fetch(ctx context.Context) (Dataset, error) {
	return s.sim.Dataset(), nil
}

// SupplementInventory fills in simulated inventory snapshots when an
// extraction carried none. Orders, returns and people stay as measured;
// only the inventory half of the dataset is generated, and the
// substitution is logged so operators know those groups are simulated.
func SupplementInventory(ds Dataset, sim *Simulator, logger zerolog.Logger) Dataset {
	if len(ds.Inventory) > 0 || sim == nil {
		return ds
	}
	ds.Inventory = sim.Inventory()
	logger.Warn().
		Int("inventory_rows", len(ds.Inventory)).
		Msg("Source carried no inventory, snapshots are simulated")
	return ds
}
