// Package hexarchive extracts files from archives stored as hex dumps.
//
// An input is a text file holding either an xxd-style annotated dump or a
// bare run of hex digits. Once decoded, the bytes form a small container:
// a four-byte magic that also selects the byte order, a version byte, and a
// sequence of self-describing records. Each record carries a name, its
// original and stored sizes, a method tag and the stored payload.
//
// Payloads are stored as-is, zlib-compressed, LZMA-compressed, or sealed as
// a Fernet token whose key is stored in front of it.
//
// # Failure policy
//
// Errors fall into four classes:
//   - Fatal: malformed hex, bad magic, unsupported version. Nothing is
//     written.
//   - Stream-terminating: a record runs past the end of the buffer or has
//     a non-UTF-8 name. Later records cannot be located, so extraction
//     stops, but entries already extracted are kept and listed in the
//     manifest.
//   - Entry-recoverable: unknown method, corrupt compressed data, bad key
//     or token, unusable output path. The entry is logged and skipped.
//   - Warning: the recovered size differs from the declared size. The
//     entry is still written.
//
// # Quick Start
//
//	x := hexarchive.New(hexarchive.NewFileSink("./extracted"),
//	    hexarchive.WithLogger(logger),
//	)
//	manifest, err := x.ExtractFile("archive.hex")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(manifest.Rows), "files extracted")
package hexarchive
