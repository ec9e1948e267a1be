// symbols/symbol_table.go - Registry of overloaded names
//
// The table is split into focused files:
// - symbol_table_core.go: SymbolTable struct, Symbol, scope kinds, errors
// - symbol_table_operations.go: define, find and resolve for functions and classes

package symbols
