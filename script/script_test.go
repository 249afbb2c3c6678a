package script_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/script"
)

var _ = Describe("Script", func() {
	Context("Programs", func() {
		It("should skip a move on a taken jg", func() {
			regs, err := script.Run("a.star", `
mov(ax, 5)
mov(bx, 3)
cmp(ax, bx)
jg("end")
mov(cx, 1)
label("end")
`)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs).To(Equal([cpu.REGISTER_COUNT]int{5, 3, 0, 0}))
		})

		It("should count in a loop", func() {
			regs, err := script.Run("b.star", `
mov(ax, 0)
label("loop")
inc(ax)
cmp(ax, 3)
jne("loop")
`)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs[0]).To(Equal(3))
		})

		It("should jump to an undeclared numeric label as an index", func() {
			regs, err := script.Run("c.star", `
jmp("3")
mov(ax, 1)
mov(bx, 2)
mov(cx, 3)
`)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs).To(Equal([cpu.REGISTER_COUNT]int{0, 0, 3, 0}))
		})

		It("should take integer targets as raw indexes", func() {
			regs, err := script.Run("halt.star", `
mov(ax, 1)
jmp(-1)
mov(ax, 2)
`)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs[0]).To(Equal(1))
		})

		It("should run Starlark control flow at compile time", func() {
			prog, err := script.Compile("gen.star", `
def zero(regs):
    for r in regs:
        mov(r, 0)

for r in [ax, bx, cx, dx]:
    mov(r, 7)
zero([bx, dx])
dec(cx, ax)
`)
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Len()).To(Equal(7))

			regs, err := cpu.Run(prog)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs).To(Equal([cpu.REGISTER_COUNT]int{7, 0, 0, 0}))
		})

		It("should provide all conditional jumps", func() {
			regs, err := script.Run("cond.star", `
cmp(ax, 1)
jl("lt")
mov(dx, -1)
label("lt")
jle("le")
mov(dx, -2)
label("le")
je("never")
jge("never")
jg("never")
jne("ne")
mov(dx, -3)
label("ne")
inc(bx)
jmp(-1)
label("never")
mov(cx, 9)
`)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs).To(Equal([cpu.REGISTER_COUNT]int{0, 1, 0, 0}))
		})
	})

	Context("Attribution", func() {
		It("should record the calling line and words", func() {
			prog, err := script.Compile("lines.star", "mov(ax, 5)\n\ninc(bx, ax)\njne(\"top\")\nlabel(\"top\")\n")
			Expect(err).NotTo(HaveOccurred())
			Expect(prog.Opcodes).To(HaveLen(3))

			Expect(prog.Opcodes[0].LineNo).To(Equal(1))
			Expect(prog.Opcodes[0].Words).To(Equal([]string{"mov", "ax", "5"}))
			Expect(prog.Opcodes[1].LineNo).To(Equal(3))
			Expect(prog.Opcodes[1].Words).To(Equal([]string{"inc", "bx", "ax"}))
			Expect(prog.Opcodes[2].Words).To(Equal([]string{"jne", "top"}))
			Expect(prog.Labels).To(Equal(cpu.Labels{"top": 3}))
		})

		It("should produce a listing the assembler accepts", func() {
			prog, err := script.Compile("listing.star", `
mov(bx, 4)
label("top")
inc(ax, bx)
dec(bx)
cmp(bx, 0)
jg("top")
`)
			Expect(err).NotTo(HaveOccurred())

			asm := &cpu.Assembler{}
			again, err := asm.Parse(strings.NewReader(prog.String()))
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Labels).To(Equal(prog.Labels))

			for ip, inst := range again.Instructions() {
				Expect(inst).To(Equal(prog.Opcodes[ip].Instruction))
			}
		})
	})

	Context("Predefines", func() {
		It("should predeclare integers and strings", func() {
			c := &script.Compiler{}
			c.Predefine("LIMIT", "0x10")
			c.Predefine("NAME", "done")

			prog, err := c.Compile("pre.star", `
mov(ax, LIMIT)
jmp(NAME)
mov(ax, 0)
label(NAME)
`)
			Expect(err).NotTo(HaveOccurred())

			regs, err := cpu.Run(prog)
			Expect(err).NotTo(HaveOccurred())
			Expect(regs[0]).To(Equal(0x10))
		})

		It("should reset between compiles", func() {
			c := &script.Compiler{}

			first, err := c.Compile("one.star", `label("x")
mov(ax, 1)`)
			Expect(err).NotTo(HaveOccurred())

			second, err := c.Compile("two.star", `label("x")
mov(bx, 1)`)
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Len()).To(Equal(1))
			Expect(second.Len()).To(Equal(1))
		})
	})

	Context("Errors", func() {
		DescribeTable("builtin misuse",
			func(src string, expected error) {
				_, err := script.Compile("bad.star", src)
				Expect(err).To(MatchError(expected))
			},
			Entry("duplicate label", `label("x")
mov(ax, 1)
label("x")`, cpu.ErrLabelDuplicate),
			Entry("empty label", `label("")`, cpu.ErrLabelSyntax),
			Entry("integer label", `label(3)`, cpu.ErrLabelSyntax),
			Entry("missing value", `mov(ax)`, cpu.ErrOpcodeValueMissing),
			Entry("missing target", `jmp()`, cpu.ErrTargetMissing),
			Entry("extra args", `inc(ax, 1, 2)`, cpu.ErrOpcodeExtraArgs),
			Entry("keyword args", `mov(ax, src=1)`, script.ErrKeywordArgs),
			Entry("bad target", `jmp(ax)`, cpu.ErrLabelSyntax),
		)

		It("should reject non-register destinations", func() {
			_, err := script.Compile("dst.star", `mov(5, ax)`)
			var epr cpu.ErrParseRegister
			Expect(errors.As(err, &epr)).To(BeTrue())
			Expect(string(epr)).To(Equal("5"))
		})

		It("should reject non-integer operands", func() {
			_, err := script.Compile("src.star", `mov(ax, "five")`)
			var epv cpu.ErrParseValue
			Expect(errors.As(err, &epv)).To(BeTrue())
			Expect(string(epv)).To(Equal("five"))
		})

		It("should report undeclared labels with their line", func() {
			_, err := script.Compile("missing.star", "mov(ax, 1)\njne(\"nowhere\")\n")

			var elm cpu.ErrLabelMissing
			Expect(errors.As(err, &elm)).To(BeTrue())
			Expect(string(elm)).To(Equal("nowhere"))

			var se *cpu.ErrSyntax
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.LineNo).To(Equal(2))
			Expect(se.Line).To(Equal("jne nowhere"))
		})

		It("should report Starlark errors", func() {
			_, err := script.Compile("syntax.star", `mov(ax, `)
			Expect(err).To(HaveOccurred())

			_, err = script.Compile("undefined.star", `halt()`)
			Expect(err).To(HaveOccurred())
		})

		It("should reject unknown source types", func() {
			_, err := script.Compile("int.star", 42)
			Expect(err).To(MatchError(script.ErrSource))
		})
	})
})
