package catalog

// TableInode is the pair of file identifiers a table is stored under:
// head_ino carries the serialized table header (schema, num_blocks, and for
// hash indexes the bucket directory); data_ino carries the block-addressed
// heap itself.
type TableInode struct {
	HeadIno uint64
	DataIno uint64
}
