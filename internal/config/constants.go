package config

const SourceFileExt = ".qn"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".qn", ".quench"}

// IsTestMode indicates if the program is running in test mode.
// The quench command has no test mode and never sets it, so it stays false.
var IsTestMode = false

// Built-in type names
const (
	IntTypeName    = "Int"
	FloatTypeName  = "Float"
	BoolTypeName   = "Bool"
	CharTypeName   = "Char"
	StringTypeName = "String"
	ListTypeName   = "List"
	MapTypeName    = "Map"
	OptionTypeName = "Option"
	ResultTypeName = "Result"
	NilCtorName    = "Nil"
	ConsCtorName   = "Cons"
	SomeCtorName   = "Some"
	ZeroCtorName   = "Zero"
	OkCtorName     = "Ok"
	FailCtorName   = "Fail"
	TrueCtorName   = "True"
	FalseCtorName  = "False"
)

// Built-in trait names
const (
	ShowTraitName = "Show"
	EqTraitName   = "Eq"
	OrdTraitName  = "Ord"
)
