package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/levenlabs/go-lflag"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gmcavallazzi/opthome/pkg/log"
	"github.com/gmcavallazzi/opthome/pkg/types"
)

const (
	stateDocSnapshot = "snapshot"
	stateDocSchedule = "schedule"
)

// FirestoreProvider implements Database using Google Cloud Firestore.
// State documents are stored as JSON strings for portability.
type FirestoreProvider struct {
	client    *firestore.Client
	projectID string
	database  string
}

// configuredFirestore sets up the Firestore provider. It registers flags for
// configuration.
func configuredFirestore() *FirestoreProvider {
	projectID := lflag.String("firestore-project-id", "", "Google Cloud Project ID for Firestore")
	database := lflag.String("firestore-database", "", "Google Cloud Firestore Database")
	emulator := lflag.String("firestore-emulator", "", "Use Firestore emulator")

	f := &FirestoreProvider{}

	lflag.Do(func() {
		f.projectID = *projectID
		f.database = *database

		// set this because that's how the firestore client expects it
		if *emulator != "" {
			os.Setenv("FIRESTORE_EMULATOR_HOST", *emulator)
		}
	})

	return f
}

// Init initializes the Firestore client. Must be called before any other
// provider method.
func (f *FirestoreProvider) Init(ctx context.Context) error {
	projectID := f.projectID
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	database := f.database
	if database == "" {
		database = firestore.DefaultDatabaseID
	}
	client, err := firestore.NewClientWithDatabase(ctx, projectID, database)
	if err != nil {
		return fmt.Errorf("failed to create firestore client (project=%s, database=%s): %w", projectID, database, err)
	}
	f.client = client
	return nil
}

// Close closes the Firestore client connection.
func (f *FirestoreProvider) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func (f *FirestoreProvider) stateDoc(siteID, name string) (*firestore.DocumentRef, error) {
	if siteID == "" {
		return nil, fmt.Errorf("siteID cannot be empty")
	}
	return f.client.Collection("sites").Doc(siteID).Collection("state").Doc(name), nil
}

func (f *FirestoreProvider) getJSON(ctx context.Context, siteID, name string, v any) error {
	ref, err := f.stateDoc(siteID, name)
	if err != nil {
		return err
	}
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch %s doc: %w", name, err)
	}

	val, err := doc.DataAt("json")
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "state doc missing json", slog.String("siteID", siteID), slog.String("doc", name))
		return fmt.Errorf("%s document missing 'json' field: %w", name, err)
	}
	jsonStr, ok := val.(string)
	if !ok {
		return fmt.Errorf("%s 'json' field is not a string", name)
	}
	if err := json.Unmarshal([]byte(jsonStr), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s json: %w", name, err)
	}
	return nil
}

func (f *FirestoreProvider) setJSON(ctx context.Context, siteID, name string, v any) error {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	ref, err := f.stateDoc(siteID, name)
	if err != nil {
		return err
	}
	_, err = ref.Set(ctx, map[string]interface{}{
		"json":      string(jsonBytes),
		"updatedAt": time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// GetSnapshot retrieves the latest appliance export snapshot for a site.
func (f *FirestoreProvider) GetSnapshot(ctx context.Context, siteID string) (types.Snapshot, error) {
	var snap types.Snapshot
	if err := f.getJSON(ctx, siteID, stateDocSnapshot, &snap); err != nil {
		return types.Snapshot{}, err
	}
	return snap, nil
}

// SetSnapshot saves the latest appliance export snapshot for a site.
func (f *FirestoreProvider) SetSnapshot(ctx context.Context, siteID string, snap types.Snapshot) error {
	return f.setJSON(ctx, siteID, stateDocSnapshot, snap)
}

// GetSchedule retrieves the current optimized schedule for a site.
func (f *FirestoreProvider) GetSchedule(ctx context.Context, siteID string) (types.OptimizedSchedule, error) {
	var sched types.OptimizedSchedule
	if err := f.getJSON(ctx, siteID, stateDocSchedule, &sched); err != nil {
		return types.OptimizedSchedule{}, err
	}
	return sched, nil
}

// SetSchedule saves the current optimized schedule for a site.
func (f *FirestoreProvider) SetSchedule(ctx context.Context, siteID string, sched types.OptimizedSchedule) error {
	return f.setJSON(ctx, siteID, stateDocSchedule, sched)
}

// ListSites returns every site document ID, including documents that only
// exist as parents of state subcollections.
func (f *FirestoreProvider) ListSites(ctx context.Context) ([]string, error) {
	var sites []string
	iter := f.client.Collection("sites").DocumentRefs(ctx)
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate sites: %w", err)
		}
		sites = append(sites, ref.ID)
	}
	return sites, nil
}
