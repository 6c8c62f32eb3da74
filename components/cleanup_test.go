package components

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/relloyd/country-metrics/artifact"
	"github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stream"
)

type failingDeleteStore struct {
	*artifact.MemoryStore
}

func (failingDeleteStore) Delete(context.Context, string) error {
	return errors.New("permission denied")
}

func TestNewCleanup(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	log := logger.NewNullLogger()
	store := artifact.NewMemoryStore()
	locs := []string{constants.ArtifactRawDefault, constants.ArtifactFinalDefault}

	// Test 1 - nothing to clean is not an error.
	res, err := NewCleanup(ctx, &CleanupConfig{Log: log, Name: "cleanup", Store: store, Locations: locs})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Deleted).To(BeEmpty())
	g.Expect(res.Missing).To(Equal(locs))

	// Test 2 - present artifacts are removed.
	g.Expect(store.Write(ctx, constants.ArtifactRawDefault, stream.NewTable(constants.CountryFields))).To(Succeed())
	res, err = NewCleanup(ctx, &CleanupConfig{Log: log, Name: "cleanup", Store: store, Locations: locs})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(res.Deleted).To(Equal([]string{constants.ArtifactRawDefault}))
	g.Expect(res.Missing).To(Equal([]string{constants.ArtifactFinalDefault}))
	_, err = store.Read(ctx, constants.ArtifactRawDefault)
	g.Expect(errors.Is(err, artifact.ErrArtifactNotFound)).To(BeTrue())

	// Test 3 - other delete failures are returned.
	_, err = NewCleanup(ctx, &CleanupConfig{Log: log, Name: "cleanup", Store: failingDeleteStore{store}, Locations: locs})
	g.Expect(err).To(MatchError(ContainSubstring("permission denied")))
}
