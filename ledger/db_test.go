package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDb(t *testing.T) *DatabaseManager {
	db, err := NewDatabaseManager("sqlite3", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	require.NoError(t, db.Open())
	require.NoError(t, db.CreateTables())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInvalidDriver(t *testing.T) {
	_, err := NewDatabaseManager("postgres", "whatever")
	assert.Error(t, err)
}

func TestInsertAndGetConversions(t *testing.T) {
	db := openTestDb(t)

	conversion := &Conversion{
		RunName:     "160318_D00547_0652_BHKNNGBCXX",
		LaneIndex:   1,
		FlowcellId:  "HKNNGBCXX",
		LibraryName: "lib1",
		BasesMask:   "y98,I8,I8,y98",
		SampleSheet: "160318_D00547_0652_BHKNNGBCXX-L1-samplesheet.csv",
		FastqCount:  12,
		State:       "complete",
		Started:     time.Now().Add(-time.Hour),
		Finished:    time.Now(),
	}
	require.NoError(t, db.InsertConversion(conversion))
	assert.NotZero(t, conversion.Id)

	conversions, err := db.GetConversions(10)
	require.NoError(t, err)
	require.Len(t, conversions, 1)
	assert.Equal(t, "HKNNGBCXX", conversions[0].FlowcellId)
	assert.Equal(t, 12, conversions[0].FastqCount)
}

func TestGetConversionsNewestFirst(t *testing.T) {
	db := openTestDb(t)

	for _, lane := range []int{1, 2, 3} {
		require.NoError(t, db.InsertConversion(&Conversion{
			RunName:   "run1",
			LaneIndex: lane,
			State:     "complete",
			Started:   time.Now(),
			Finished:  time.Now(),
		}))
	}

	conversions, err := db.GetConversions(2)
	require.NoError(t, err)
	require.Len(t, conversions, 2)
	assert.Equal(t, 3, conversions[0].LaneIndex)
	assert.Equal(t, 2, conversions[1].LaneIndex)
}

func TestHasConversion(t *testing.T) {
	db := openTestDb(t)

	done, err := db.HasConversion("run1", 1)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, db.InsertConversion(&Conversion{
		RunName: "run1", LaneIndex: 1, State: "failed",
		Started: time.Now(), Finished: time.Now(),
	}))
	done, err = db.HasConversion("run1", 1)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, db.InsertConversion(&Conversion{
		RunName: "run1", LaneIndex: 1, State: "complete",
		Started: time.Now(), Finished: time.Now(),
	}))
	done, err = db.HasConversion("run1", 1)
	require.NoError(t, err)
	assert.True(t, done)
}
