package index

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/sourmash-go/sourmash/errs"
	"github.com/sourmash-go/sourmash/storage"
)

// descriptorVersion is the SBT JSON format version this package writes.
const descriptorVersion = 5

// Save persists every node and leaf blob of the tree into store and writes
// the JSON descriptor to w. info describes store so a later Load can
// reconstruct it. Nodes and leaves without a filename are assigned one
// ("internal.<pos>" for nodes, "<md5sum>.sig" for leaves).
func (t *SBT) Save(w io.Writer, info storage.Info, store storage.Storage) error {
	desc := sbtDescriptor{
		D:       t.D,
		Version: descriptorVersion,
		Storage: info,
		Factory: factoryDescriptor{
			Class: t.Factory.Class,
			Args: []float64{
				float64(t.Factory.NTables),
				float64(t.Factory.TableSize),
				float64(t.Factory.Ksize),
			},
		},
		Nodes:  make(map[string]nodeMeta),
		Leaves: make(map[string]leafMeta),
	}
	if desc.Factory.Class == "" {
		desc.Factory.Class = "GraphFactory"
	}

	for pos, node := range t.Nodes {
		ng, err := node.Nodegraph()
		if err != nil {
			return err
		}
		filename := node.Filename
		if filename == "" {
			filename = fmt.Sprintf("internal.%d", pos)
		}
		var blob bytes.Buffer
		if err := ng.Write(&blob); err != nil {
			return err
		}
		if _, err := store.Save(filename, blob.Bytes()); err != nil {
			return err
		}
		nm := nodeMeta{Filename: filename, Name: node.Name}
		nm.Metadata.MinNBelow = node.MinNBelow
		desc.Nodes[strconv.FormatUint(pos, 10)] = nm
	}

	for pos, leaf := range t.Leaves {
		sig, err := leaf.Signature()
		if err != nil {
			return err
		}
		filename := leaf.Filename
		if filename == "" && len(sig.Sketches) > 0 {
			filename = sig.Sketches[0].MD5Sum + ".sig"
		}
		blob, err := sig.MarshalJSON()
		if err != nil {
			return errs.Wrap(errs.Io, err, "serializing signature %q", filename)
		}
		if _, err := store.Save(filename, blob); err != nil {
			return err
		}
		desc.Leaves[strconv.FormatUint(pos, 10)] = leafMeta{
			Filename: filename,
			Name:     leaf.Name,
			Metadata: leaf.Metadata,
		}
	}

	out, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Io, err, "serializing SBT descriptor")
	}
	_, err = w.Write(out)
	return err
}

// SaveFile writes the tree to path (conventionally "<name>.sbt.json"),
// placing its blobs in a hidden ".sbt.<name>" directory alongside it.
func (t *SBT) SaveFile(path string) error {
	name := strings.TrimSuffix(filepath.Base(path), ".sbt.json")
	subdir := ".sbt." + name
	store := storage.NewFSStorage(filepath.Join(filepath.Dir(path), subdir))
	info := storage.Info{
		Backend: "FSStorage",
		Args:    map[string]string{"path": subdir},
	}

	var buf bytes.Buffer
	if err := t.Save(&buf, info, store); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errs.Wrap(errs.Io, err, "writing SBT descriptor %q", path)
	}
	return nil
}

// LoadFile reads and reconstructs the SBT descriptor at path.
func LoadFile(path string) (*SBT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "reading SBT descriptor %q", path)
	}
	return Load(data, filepath.Dir(path))
}
