package s3

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"
)

func TestBasicClient(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	api := NewMockS3API()
	c := NewBasicClientWithAPI("bucket", "eu-west-1", "runs/", api)

	g.Expect(c.Put(ctx, "countries_temp.csv", []byte("a,b\n"))).To(Succeed())
	g.Expect(api.Objects).To(HaveKey("runs/countries_temp.csv"))

	data, err := c.Get(ctx, "countries_temp.csv")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(data)).To(Equal("a,b\n"))

	keys, err := c.List(ctx, "countries")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(keys).To(Equal([]string{"countries_temp.csv"}))

	g.Expect(c.Delete(ctx, "countries_temp.csv")).To(Succeed())
	_, err = c.Get(ctx, "countries_temp.csv")
	g.Expect(err).To(Equal(ErrKeyNotFound))
	g.Expect(c.Delete(ctx, "countries_temp.csv")).To(Equal(ErrKeyNotFound))
}

func TestParseDSN(t *testing.T) {
	g := NewWithT(t)
	b, err := ParseDSN("s3://my-bucket/some/prefix/", "eu-west-2")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(b).To(Equal(AwsS3Bucket{Name: "my-bucket", Prefix: "some/prefix", Region: "eu-west-2"}))
	g.Expect(b.String()).To(Equal("s3://my-bucket/some/prefix"))

	b, err = ParseDSN("plain-bucket", "eu-west-2")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(b.Name).To(Equal("plain-bucket"))

	_, err = ParseDSN("gs://bucket", "eu-west-2")
	g.Expect(err).To(HaveOccurred())
	_, err = ParseDSN("s3://bucket", "")
	g.Expect(err).To(HaveOccurred())
}
