// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

var (
	reCharacter  = regexp.MustCompile(`'\\?[^']'`)
	reExpression = regexp.MustCompile(`\$\([^\$]*\)`)
)

// Assembler is a single pass macro assembler for the register machine.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string   // Predefines
	Label     Labels              // Map of jump labels to instruction indexes.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	builder   Builder
	expansion int             // Count of macro expansions, for local labels.
	expanding map[string]bool // Macros currently being expanded.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	invert := false
	if strings.HasPrefix(word, "~") {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	value, err = parseInt(word)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// operandOf returns a register or literal operand.
func (asm *Assembler) operandOf(word string) (op Operand, err error) {
	reg, ok := ParseRegister(word)
	if ok {
		op = Reg(reg)
		return
	}

	value, err := asm.valueOf(word)
	if err != nil {
		err = ErrParseValue(word)
		return
	}

	op = Imm(value)
	return
}

// registerOf returns a destination register.
func (asm *Assembler) registerOf(word string) (reg Register, err error) {
	reg, ok := ParseRegister(word)
	if !ok {
		err = ErrParseRegister(word)
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var number int
		number, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or labels.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(number)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// splitWords splits a line on spaces, tabs, and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// stripComment removes a ';' comment, ignoring a quoted ';' character.
func stripComment(text string) string {
	quoted := reCharacter.FindAllStringIndex(text, -1)

	for n, r := range text {
		if r != ';' {
			continue
		}
		inside := false
		for _, q := range quoted {
			if n > q[0] && n < q[1]-1 {
				inside = true
				break
			}
		}
		if !inside {
			return text[:n]
		}
	}

	return text
}

// parseLine parses a single line into the words of an instruction.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		err = asm.declareLabel(words[0][:len(words[0])-1])
		if err != nil {
			return
		}
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]
		if asm.expanding[name] {
			err = ErrMacroRecursion
			return
		}

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		if asm.expanding == nil {
			asm.expanding = map[string]bool{}
		}
		asm.expanding[name] = true
		defer delete(asm.expanding, name)

		asm.expansion += 1
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.builder.Verbose = asm.Verbose
	asm.builder.Reset()
	asm.expansion = 0
	clear(asm.expanding)
	asm.Label = nil
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	prog, err = asm.builder.Program()
	if err != nil {
		return
	}
	asm.Label = prog.Labels

	// Final check of jump labels.
	for _, op := range prog.Opcodes {
		if op.Kind != KIND_JUMP || !op.Target.IsLabel() {
			continue
		}
		_, err = prog.Labels.Resolve(op.Target)
		if err != nil {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			prog = nil
			return
		}
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	// no-op
	if len(words) == 0 {
		return
	}

	b := &asm.builder
	b.At(lineno, words)

	defer func() {
		if err == nil {
			err = b.Err()
		}
	}()

	mnemonic := words[0]
	args := words[1:]

	switch mnemonic {
	case "label":
		if len(args) < 1 {
			err = ErrTargetMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		err = asm.declareLabel(args[0])
	case "mov", "cmp":
		if len(args) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var dst Register
		var src Operand
		dst, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		src, err = asm.operandOf(args[1])
		if err != nil {
			return
		}
		if mnemonic == "mov" {
			b.Move(dst, src)
		} else {
			b.Compare(dst, src)
		}
	case "inc", "dec":
		if len(args) < 1 {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > 2 {
			err = ErrOpcodeExtraArgs
			return
		}
		var dst Register
		dst, err = asm.registerOf(args[0])
		if err != nil {
			return
		}
		var src []Operand
		if len(args) == 2 {
			var op Operand
			op, err = asm.operandOf(args[1])
			if err != nil {
				return
			}
			src = append(src, op)
		}
		if mnemonic == "inc" {
			b.Increment(dst, src...)
		} else {
			b.Decrement(dst, src...)
		}
	default:
		cond, ok := ParseCond(mnemonic)
		if !ok {
			err = ErrParseInstruction(mnemonic)
			return
		}
		if len(args) < 1 {
			err = ErrTargetMissing
			return
		}
		if len(args) > 1 {
			err = ErrOpcodeExtraArgs
			return
		}
		b.Jump(cond, asm.targetOf(args[0]))
	}

	return
}

// declareLabel binds a label to the next instruction.
// Numeric names are refused, as they would read as raw indexes.
func (asm *Assembler) declareLabel(name string) (err error) {
	_, err = asm.valueOf(name)
	if err == nil {
		err = ErrLabelSyntax
		return
	}

	asm.builder.DeclareLabel(name)
	err = asm.builder.Err()
	return
}

// targetOf returns a raw index for numeric words, and a label otherwise.
func (asm *Assembler) targetOf(word string) Target {
	value, err := asm.valueOf(word)
	if err == nil {
		return Index(value)
	}

	return Label(word)
}
