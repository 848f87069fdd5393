package snapshot

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/leafstorm/railgen/pkg/cache"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/loader"
	"github.com/leafstorm/railgen/pkg/network"
)

// Snapshot is one published version of a network.
type Snapshot struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name" bson:"name"`
	Digest    string          `json:"digest" bson:"digest"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Stations  int             `json:"stations" bson:"stations"`
	Lines     int             `json:"lines" bson:"lines"`
	Document  loader.Document `json:"document" bson:"document"`
}

// New captures net as a snapshot with a fresh random ID.
func New(net *network.Network) *Snapshot {
	doc := FromNetwork(net)
	return &Snapshot{
		ID:   uuid.NewString(),
		Name: net.Name(),
		// BSON datetimes keep milliseconds only.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		Digest:    Digest(doc),
		Stations:  net.StationCount(),
		Lines:     net.LineCount(),
		Document:  *doc,
	}
}

// Digest hashes the canonical JSON form of doc. Equal networks produce
// equal digests whatever format they were loaded from.
func Digest(doc *loader.Document) string {
	data, _ := json.Marshal(doc)
	return cache.Hash(data)
}

// FromNetwork rebuilds the document that describes net. Stations come out in
// name order and lines in number order; waypoints become coordinate stops.
func FromNetwork(net *network.Network) *loader.Document {
	doc := &loader.Document{Name: net.Name()}
	if r, ok := net.XRange(); ok {
		doc.XRange = &loader.Bounds{Min: r.Min, Max: r.Max}
	}
	if r, ok := net.ZRange(); ok {
		doc.ZRange = &loader.Bounds{Min: r.Min, Max: r.Max}
	}
	for st := range net.Stations() {
		doc.Stations = append(doc.Stations, loader.StationSpec{
			Name: st.Name(), X: st.X(), Z: st.Z(), Notes: st.Notes(),
		})
	}
	for line := range net.Lines() {
		spec := loader.LineSpec{
			Number:    line.Number(),
			Name:      line.Name(),
			Direction: line.Direction().String(),
			Flow:      line.Flow().String(),
			Level:     line.Level().String(),
			Type:      line.Type().String(),
			Notes:     line.Notes(),
			Stops:     make([]loader.StopSpec, 0, line.StopCount()),
		}
		for st, landing := range line.Stops() {
			if st.IsWaypoint() {
				spec.Stops = append(spec.Stops, network.Waypoint(st.X(), st.Z()))
			} else {
				spec.Stops = append(spec.Stops, network.Named(st.Name(), landing))
			}
		}
		doc.Lines = append(doc.Lines, spec)
	}
	return doc
}

// Network loads the snapshot's document.
func (s *Snapshot) Network(opts loader.Options) (*network.Network, error) {
	return loader.Load(&s.Document, opts)
}

// Validate checks the envelope fields. The document itself is checked when
// it is loaded.
func (s *Snapshot) Validate() error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, "snapshot id %q", s.ID)
	}
	if s.Digest == "" {
		return rgerrors.New(rgerrors.ErrCodeInvalidInput, "snapshot %s has no digest", s.ID)
	}
	return nil
}

// Marshal encodes s as indented JSON.
func Marshal(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes s as indented JSON to w.
func Write(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "encode snapshot")
	}
	return nil
}

// Unmarshal decodes a JSON snapshot and validates its envelope.
func Unmarshal(data []byte) (*Snapshot, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes a JSON snapshot from r.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarshalBSON encodes s as a BSON document.
func MarshalBSON(s *Snapshot) ([]byte, error) {
	data, err := bson.Marshal(s)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "encode snapshot")
	}
	return data, nil
}

// UnmarshalBSON decodes a BSON snapshot.
func UnmarshalBSON(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := bson.Unmarshal(data, &s); err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
