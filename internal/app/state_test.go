package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/methview/internal/interval"
	"github.com/inodb/methview/internal/regions"
	"github.com/inodb/methview/internal/store"
)

func testStore() store.GeneStore {
	return store.NewMemory(map[string]*regions.GeneAnnotation{
		"gene-Xkr4": {
			GeneID: "gene-Xkr4", Chrom: "chr1", Strand: "+",
			Regions: map[regions.Kind][]interval.Interval{
				regions.KindGene:       {{Start: 1000, End: 2000}},
				regions.KindExon:       {{Start: 1200, End: 1400}},
				regions.KindIntron:     {{Start: 1000, End: 1200}, {Start: 1400, End: 2000}},
				regions.KindCDS:        {},
				regions.KindPromoter:   {{Start: 0, End: 1000}},
				regions.KindDownstream: {{Start: 2000, End: 4000}},
			},
			ExonCount: 1,
		},
	})
}

// writeBED creates a small modkit-layout BED file with one m row per site.
func writeBED(t *testing.T, sites ...[4]int64) string {
	t.Helper()
	var b strings.Builder
	for _, s := range sites {
		cols := make([]string, 18)
		for i := range cols {
			cols[i] = "."
		}
		cols[0] = "chr1"
		cols[1] = fmt.Sprintf("%d", s[0])
		cols[2] = fmt.Sprintf("%d", s[1])
		cols[3] = "m"
		cols[9] = fmt.Sprintf("%d", s[2])
		cols[11] = fmt.Sprintf("%d", s[3])
		b.WriteString(strings.Join(cols, "\t") + "\n")
	}
	path := filepath.Join(t.TempDir(), "sample.bed")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func waitReady(t *testing.T, a *App, jobID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		info, err := a.Status(jobID)
		return err == nil && info.Status != JobPending
	}, 5*time.Second, 5*time.Millisecond)
}

func TestApp_QueryBeforeAnythingLoaded(t *testing.T) {
	a := New(nil)
	_, err := a.QueryGene("Xkr4")
	assert.ErrorIs(t, err, ErrAnnotationsNotReady)

	_, err = a.Genes("")
	assert.ErrorIs(t, err, ErrAnnotationsNotReady)

	_, err = a.SubmitLoad("x.bed")
	assert.ErrorIs(t, err, ErrAnnotationsNotReady)
}

func TestApp_QueryBeforeDatasetReady(t *testing.T) {
	a := New(testStore())
	_, err := a.QueryGene("Xkr4")
	assert.ErrorIs(t, err, ErrDatasetNotReady)
}

func TestApp_LoadLifecycle(t *testing.T) {
	a := New(testStore())
	path := writeBED(t, [4]int64{1300, 1301, 20, 5})

	jobID, err := a.SubmitLoad(path)
	require.NoError(t, err)
	waitReady(t, a, jobID)

	info, err := a.Status(jobID)
	require.NoError(t, err)
	assert.Equal(t, JobReady, info.Status)
	assert.Equal(t, 1, info.Rows)

	res, err := a.QueryGene("Xkr4")
	require.NoError(t, err)
	require.Len(t, res.Sites, 1)
	assert.Equal(t, int64(1300), res.Sites[0].Position)

	snap := a.Snapshot()
	assert.True(t, snap.AnnotationsReady)
	assert.Equal(t, 1, snap.GeneCount)
	assert.True(t, snap.DatasetReady)
	assert.Equal(t, jobID, snap.CurrentJobID)
}

func TestApp_FailedLoadKeepsPreviousDataset(t *testing.T) {
	a := New(testStore())
	good := writeBED(t, [4]int64{1300, 1301, 20, 5})

	first, err := a.SubmitLoad(good)
	require.NoError(t, err)
	waitReady(t, a, first)

	second, err := a.SubmitLoad(filepath.Join(t.TempDir(), "absent.bed"))
	require.NoError(t, err)
	waitReady(t, a, second)

	info, err := a.Status(second)
	require.NoError(t, err)
	assert.Equal(t, JobFailed, info.Status)
	assert.NotEmpty(t, info.Error)

	// The first dataset remains current and queryable.
	snap := a.Snapshot()
	assert.Equal(t, first, snap.CurrentJobID)
	_, err = a.QueryGene("Xkr4")
	assert.NoError(t, err)
}

func TestApp_SecondLoadEvictsFirst(t *testing.T) {
	a := New(testStore())

	first, err := a.SubmitLoad(writeBED(t, [4]int64{1300, 1301, 20, 5}))
	require.NoError(t, err)
	waitReady(t, a, first)

	second, err := a.SubmitLoad(writeBED(t, [4]int64{1500, 1501, 10, 2}, [4]int64{600, 601, 8, 8}))
	require.NoError(t, err)
	waitReady(t, a, second)

	snap := a.Snapshot()
	assert.Equal(t, second, snap.CurrentJobID)
	assert.Equal(t, 2, snap.DatasetRows)

	// Evicted job keeps its metadata.
	info, err := a.Status(first)
	require.NoError(t, err)
	assert.Equal(t, JobReady, info.Status)
	assert.Equal(t, 1, info.Rows)

	res, err := a.QueryGene("Xkr4")
	require.NoError(t, err)
	assert.Len(t, res.Sites, 2)
}

func TestApp_Genes(t *testing.T) {
	a := New(testStore())

	genes, err := a.Genes("")
	require.NoError(t, err)
	assert.Equal(t, []string{"gene-Xkr4"}, genes)

	genes, err = a.Genes("xkr")
	require.NoError(t, err)
	assert.Len(t, genes, 1)

	genes, err = a.Genes("zzz")
	require.NoError(t, err)
	assert.Empty(t, genes)
}

func TestApp_ConcurrentReads(t *testing.T) {
	a := New(testStore())
	jobID, err := a.SubmitLoad(writeBED(t, [4]int64{1250, 1251, 20, 5}))
	require.NoError(t, err)
	waitReady(t, a, jobID)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				genes, err := a.Genes("xkr")
				assert.NoError(t, err)
				assert.Equal(t, []string{"gene-Xkr4"}, genes)

				res, err := a.QueryGene("Xkr4")
				assert.NoError(t, err)
				assert.Len(t, res.Sites, 1)

				snap := a.Snapshot()
				assert.True(t, snap.DatasetReady)
				assert.Equal(t, 1, snap.GeneCount)
			}
		}()
	}
	wg.Wait()
}

func TestApp_StatusUnknownJob(t *testing.T) {
	a := New(testStore())
	_, err := a.Status("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestApp_NotFoundGene(t *testing.T) {
	a := New(testStore())
	jobID, err := a.SubmitLoad(writeBED(t, [4]int64{1300, 1301, 20, 5}))
	require.NoError(t, err)
	waitReady(t, a, jobID)

	_, err = a.QueryGene("no-such-gene")
	assert.True(t, store.IsNotFound(err))
}
