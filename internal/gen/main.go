// Command gen regenerates base's ErrorKind.String() table from the
// ErrorKind const block itself, in the spirit of the teacher's own
// go:generate tools (cmd/gencore bundling Io source into Go, cmd/iofn
// scanning Go source for CFunction signatures): read Go source, emit Go
// source, never hand-duplicate the list of names.
package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"

	"golang.org/x/tools/imports"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: gen <source.go with ErrorKind const block> <output.go>")
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(sourcePath, outputPath string) error {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, sourcePath, nil, 0)
	if err != nil {
		return err
	}

	names, err := errorKindNames(file)
	if err != nil {
		return err
	}

	var buf []byte
	buf = append(buf, "package base\n\nimport \"fmt\"\n\n"...)
	buf = append(buf, "var errorKindNames = [...]string{\n"...)
	for _, name := range names {
		buf = append(buf, fmt.Sprintf("\t%q,\n", name)...)
	}
	buf = append(buf, "}\n\n"...)
	buf = append(buf, generatedStringMethod()...)

	formatted, err := imports.Process(outputPath, buf, nil)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, formatted, 0o644)
}

// errorKindNames walks the first "ErrorKind" const block in file, in
// declaration order, and returns each constant's identifier.
func errorKindNames(file *ast.File) ([]string, error) {
	var names []string
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.CONST {
			continue
		}
		found := false
		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			if ident, ok := valueSpec.Type.(*ast.Ident); ok && ident.Name == "ErrorKind" {
				found = true
			}
			if !found {
				continue
			}
			for _, name := range valueSpec.Names {
				names = append(names, name.Name)
			}
		}
		if found {
			return names, nil
		}
	}
	return nil, fmt.Errorf("no ErrorKind const block found")
}

func generatedStringMethod() string {
	return `func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}
`
}
