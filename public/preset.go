package public

const (
	FileLockSuffix  = ".lock"
	MergeFileSuffix = ".merge"
)

var (
	// TX_COMMIT_KEY This key is used to mark the commit of the transaction
	TX_COMMIT_KEY = []byte{0x04}

	// SNAPSHOT_FIN_KEY This key marks the end of the snapshot block written by a merge
	SNAPSHOT_FIN_KEY = []byte{0x07}

	// LOG_MAGIC heads every log so a foreign file is never replayed
	LOG_MAGIC = []byte("KLITE\x00\x01\n")
)

var (
	NO_TX_ID uint64 = 0
)
