package artifact

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/aws/s3"
	"github.com/relloyd/country-metrics/config"
	"github.com/relloyd/country-metrics/constants"
	"github.com/relloyd/country-metrics/logger"
	"github.com/relloyd/country-metrics/stream"
)

func testTable() stream.Table {
	t := stream.NewTable(constants.CountryFields)
	t.AppendRow([]string{"Testland", "Testopolis", "Europe", "100", "10"})
	t.AppendRow([]string{"Emptystan", "", "", "50", "0"})
	return t
}

func TestStores(t *testing.T) {
	log := logger.NewNullLogger()
	dir := t.TempDir()
	stores := map[string]Store{
		"file":   NewFileStore(log),
		"memory": NewMemoryStore(),
		"s3":     NewS3Store(log, s3.NewBasicClientWithAPI("bucket", "eu-west-1", "runs", s3.NewMockS3API()), "s3://bucket/runs"),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			g := NewWithT(t)
			ctx := context.Background()
			loc := filepath.Join(dir, name, "countries_temp.csv")

			_, err := store.Read(ctx, loc)
			g.Expect(errors.Is(err, ErrArtifactNotFound)).To(BeTrue(), "read of missing artifact: %v", err)
			err = store.Delete(ctx, loc)
			g.Expect(errors.Is(err, ErrArtifactNotFound)).To(BeTrue(), "delete of missing artifact: %v", err)

			g.Expect(store.Write(ctx, loc, testTable())).To(Succeed())
			got, err := store.Read(ctx, loc)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(got).To(Equal(testTable()))

			// Overwrite, not append.
			one := stream.NewTable(constants.CountryFields)
			one.AppendRow([]string{"Solo", "", "", "1", "1"})
			g.Expect(store.Write(ctx, loc, one)).To(Succeed())
			got, err = store.Read(ctx, loc)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(got.Len()).To(Equal(1))

			g.Expect(store.Delete(ctx, loc)).To(Succeed())
			_, err = store.Read(ctx, loc)
			g.Expect(errors.Is(err, ErrArtifactNotFound)).To(BeTrue())
			g.Expect(store.String()).NotTo(BeEmpty())
		})
	}
}

func TestMemoryStore_CopiesRows(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	s := NewMemoryStore()
	tbl := testTable()
	g.Expect(s.Write(ctx, "x", tbl)).To(Succeed())
	tbl.Rows[0][0] = "changed"
	got, _ := s.Read(ctx, "x")
	g.Expect(got.Rows[0][0]).To(Equal("Testland"))
}

func TestNewStore(t *testing.T) {
	g := NewWithT(t)
	log := logger.NewNullLogger()
	s, err := NewStore(log, config.Artifacts{Backend: constants.ArtifactBackendMemory})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s).To(BeAssignableToTypeOf(&MemoryStore{}))
	s, err = NewStore(log, config.Artifacts{Backend: constants.ArtifactBackendFile})
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s).To(BeAssignableToTypeOf(&FileStore{}))
	_, err = NewStore(log, config.Artifacts{Backend: "ftp"})
	g.Expect(err).To(HaveOccurred())
}
