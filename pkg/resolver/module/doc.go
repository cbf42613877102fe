// Package module resolves exported and imported functions of the shared
// libraries loaded in a process.
//
// # Query syntax
//
//	exports:<module>!<symbol>
//	imports:<module>!<symbol>
//	sections:<module>!<section>
//
// Both sides accept globs. The module pattern is matched against the module's
// path when it contains a "/" and against its base name otherwise:
//
//	exports:libc.so*!open*
//	imports:*/bin/curl!SSL_*
//	exports:*!malloc/i
//
// Import addresses are resolved the way the dynamic linker's global scope
// would: the first module, main executable first, that exports the name.
// Imports nobody exports are not reported.
//
// # Caching
//
// Nothing is read on construction beyond checking the process exists. The
// first query reads the process's executable mappings; a module's symbol
// tables are parsed the first time a query selects it. Both are kept for the
// life of the backend.
package module
