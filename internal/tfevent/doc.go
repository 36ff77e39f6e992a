// Package tfevent reads and writes TensorBoard event logs.
//
// An event log is a sequence of TFRecord frames, each carrying one
// serialized tensorflow.Event protobuf:
//
//	uint64 length          (little endian)
//	uint32 masked crc32c   (of the 8 length bytes)
//	byte   data[length]
//	uint32 masked crc32c   (of data)
//
// Only the parts of the Event message needed for scalar metrics are decoded:
// wall_time, step, file_version and the summary values. Scalars appear either
// as a Summary.Value.simple_value (TF1 / PyTorch writers) or as a size-1
// float/double tensor tagged with the "scalars" plugin (TF2 writers). Every
// other field is skipped without error.
//
// Decoding uses protowire directly, so no generated protobuf code is needed.
package tfevent
