// Package patch repairs wasm-bindgen module binaries whose externref table
// cannot grow at startup.
//
// Browsers fail with "WebAssembly.Table.grow(): failed to grow table by 4"
// when a `_bg.wasm` artifact declares its externref table with a maximum
// equal to (or too close to) its initial size, or when the
// `__wbindgen_externrefs` export points at the wrong table. Both defects are
// fixed with a minimal in-place edit:
//
//   - the table maximum is widened to the largest value representable in its
//     original LEB128 byte width;
//   - the export index is rewritten to the first externref table, again in
//     its original byte width.
//
// Because every replacement value is re-encoded into exactly the bytes it
// replaces, section sizes never change and the module is never re-encoded.
//
// # Usage
//
// Patch a single file, or everything under a directory:
//
//	patched, err := patch.File("app_bg.wasm")
//
//	files, err := patch.Candidates("./dist")
//	for _, f := range files {
//	    patched, err := patch.File(f)
//	    ...
//	}
//
// Inspect without writing:
//
//	report, err := patch.Inspect(moduleBytes)
//
// # Limitations
//
// Sections are visited in on-disk order, so the externref table index is
// only known to the export pass when the table section precedes the export
// section (always true for valid modules, whose sections are ordered by
// id). If a replacement value does not fit the original field width, that
// single rewrite is skipped rather than attempted.
package patch
