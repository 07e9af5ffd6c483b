package firestore

import (
	"context"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/domain/interfaces"
	"github.com/secmon-lab/riskmap/pkg/domain/model"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names. Each graph record carries the id of the snapshot it
// belongs to and its position within that snapshot.
const (
	CollectionRisks       = "risks"
	CollectionTPOs        = "tpos"
	CollectionMitigations = "mitigations"
	CollectionInfluences  = "influences"
	CollectionTPOImpacts  = "tpo_impacts"
	CollectionMitigates   = "mitigates"
	CollectionMeta        = "meta"

	FieldSnapshotID = "snapshot_id"
	FieldSeq        = "seq"

	currentSnapshotDoc = "current_snapshot"
)

// GraphCollections lists every collection holding graph records
var GraphCollections = []string{
	CollectionRisks,
	CollectionTPOs,
	CollectionMitigations,
	CollectionInfluences,
	CollectionTPOImpacts,
	CollectionMitigates,
}

type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.GraphRepository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// CollectionName returns the Firestore collection name of name under prefix
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

func (f *Firestore) collection(name string) *firestore.CollectionRef {
	return f.client.Collection(CollectionName(f.collectionPrefix, name))
}

type metaDocument struct {
	SnapshotID string `firestore:"snapshot_id"`
}

// currentSnapshotID returns the id of the active snapshot, or "" when nothing was imported yet
func (f *Firestore) currentSnapshotID(ctx context.Context) (string, error) {
	doc, err := f.collection(CollectionMeta).Doc(currentSnapshotDoc).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get current snapshot")
	}

	var meta metaDocument
	if err := doc.DataTo(&meta); err != nil {
		return "", goerr.Wrap(err, "failed to unmarshal snapshot metadata")
	}
	return meta.SnapshotID, nil
}

// listDocuments decodes every record of the current snapshot in collection, in stored order
func listDocuments[D any, T any](ctx context.Context, f *Firestore, name string, conv func(*D) T) ([]T, error) {
	snapshotID, err := f.currentSnapshotID(ctx)
	if err != nil {
		return nil, err
	}
	if snapshotID == "" {
		return nil, nil
	}

	iter := f.collection(name).
		Where(FieldSnapshotID, "==", snapshotID).
		OrderBy(FieldSeq, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var out []T
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate documents", goerr.V("collection", name))
		}

		var d D
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal document",
				goerr.V("collection", name),
				goerr.V("doc_id", doc.Ref.ID))
		}
		out = append(out, conv(&d))
	}
	return out, nil
}

func (f *Firestore) ListRisks(ctx context.Context) ([]model.Risk, error) {
	return listDocuments(ctx, f, CollectionRisks, (*riskDocument).toModel)
}

func (f *Firestore) ListTPOs(ctx context.Context) ([]model.TPO, error) {
	return listDocuments(ctx, f, CollectionTPOs, (*tpoDocument).toModel)
}

func (f *Firestore) ListMitigations(ctx context.Context) ([]model.Mitigation, error) {
	return listDocuments(ctx, f, CollectionMitigations, (*mitigationDocument).toModel)
}

func (f *Firestore) ListInfluences(ctx context.Context) ([]model.Influence, error) {
	return listDocuments(ctx, f, CollectionInfluences, (*influenceDocument).toModel)
}

func (f *Firestore) ListTPOImpacts(ctx context.Context) ([]model.TPOImpact, error) {
	return listDocuments(ctx, f, CollectionTPOImpacts, (*tpoImpactDocument).toModel)
}

func (f *Firestore) ListMitigates(ctx context.Context) ([]model.MitigatesRelationship, error) {
	return listDocuments(ctx, f, CollectionMitigates, (*mitigatesDocument).toModel)
}

// ReplaceSnapshot writes the new records under a fresh snapshot id, switches
// the current snapshot pointer and then removes the previous records.
// Readers never observe a mix of two snapshots.
func (f *Firestore) ReplaceSnapshot(ctx context.Context, snapshot *model.Snapshot) error {
	if snapshot == nil {
		return goerr.New("snapshot is nil")
	}

	previousID, err := f.currentSnapshotID(ctx)
	if err != nil {
		return err
	}
	snapshotID := uuid.NewString()

	bulkWriter := f.client.BulkWriter(ctx)
	// Document ids are derived from the position since record ids may
	// contain characters Firestore does not accept.
	set := func(name string, seq int, data any) error {
		ref := f.collection(name).Doc(snapshotID + "_" + strconv.Itoa(seq))
		if _, err := bulkWriter.Set(ref, data); err != nil {
			return goerr.Wrap(err, "failed to add Set operation to bulk writer",
				goerr.V("collection", name),
				goerr.V("seq", seq))
		}
		return nil
	}

	for i, r := range snapshot.Risks {
		if err := set(CollectionRisks, i, newRiskDocument(snapshotID, i, r)); err != nil {
			bulkWriter.End()
			return err
		}
	}
	for i, t := range snapshot.TPOs {
		if err := set(CollectionTPOs, i, newTPODocument(snapshotID, i, t)); err != nil {
			bulkWriter.End()
			return err
		}
	}
	for i, m := range snapshot.Mitigations {
		if err := set(CollectionMitigations, i, newMitigationDocument(snapshotID, i, m)); err != nil {
			bulkWriter.End()
			return err
		}
	}
	for i, inf := range snapshot.Influences {
		if err := set(CollectionInfluences, i, newInfluenceDocument(snapshotID, i, inf)); err != nil {
			bulkWriter.End()
			return err
		}
	}
	for i, imp := range snapshot.TPOImpacts {
		if err := set(CollectionTPOImpacts, i, newTPOImpactDocument(snapshotID, i, imp)); err != nil {
			bulkWriter.End()
			return err
		}
	}
	for i, rel := range snapshot.Mitigates {
		if err := set(CollectionMitigates, i, newMitigatesDocument(snapshotID, i, rel)); err != nil {
			bulkWriter.End()
			return err
		}
	}
	bulkWriter.End()

	if _, err := f.collection(CollectionMeta).Doc(currentSnapshotDoc).Set(ctx, &metaDocument{SnapshotID: snapshotID}); err != nil {
		return goerr.Wrap(err, "failed to switch current snapshot", goerr.V("snapshot_id", snapshotID))
	}

	if previousID != "" {
		if err := f.deleteSnapshot(ctx, previousID); err != nil {
			// The new snapshot is already active; stale records are only garbage.
			logging.From(ctx).Warn("failed to delete previous snapshot",
				"snapshot_id", previousID,
				"error", err.Error())
		}
	}
	return nil
}

func (f *Firestore) deleteSnapshot(ctx context.Context, snapshotID string) error {
	var refs []*firestore.DocumentRef
	for _, name := range GraphCollections {
		iter := f.collection(name).Where(FieldSnapshotID, "==", snapshotID).Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return goerr.Wrap(err, "failed to iterate documents for deletion", goerr.V("collection", name))
			}
			refs = append(refs, doc.Ref)
		}
		iter.Stop()
	}

	if len(refs) == 0 {
		return nil
	}

	bulkWriter := f.client.BulkWriter(ctx)
	defer bulkWriter.End()
	for _, ref := range refs {
		if _, err := bulkWriter.Delete(ref); err != nil {
			return goerr.Wrap(err, "failed to add Delete operation to bulk writer")
		}
	}
	bulkWriter.Flush()
	return nil
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
