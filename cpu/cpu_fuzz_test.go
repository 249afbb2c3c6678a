package cpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for kind := range Kind(6) {
		f.Add(uint8(kind), uint8(0), true, uint8(1), 0x1234, uint8(0), -1)
		f.Add(uint8(kind), uint8(3), false, uint8(2), -7, uint8(6), 0)
		f.Add(uint8(kind), uint8(5), false, uint8(9), 3, uint8(9), 1)
	}

	f.Fuzz(func(t *testing.T, kind uint8, dst uint8, imm bool, src uint8, value int, cond uint8, flag int) {
		assert := assert.New(t)

		inst := Instruction{
			Kind:   Kind(kind % 6),
			Dest:   Register(dst % 6),
			Cond:   Cond(cond % 9),
			Target: Index(0x40),
		}
		if imm {
			inst.Source = Imm(value)
		} else {
			inst.Source = Reg(Register(src % 6))
		}

		cpu := NewCpu(&Program{})
		cpu.Ip = 0x10
		cpu.Flag = flag
		cpu.Register = Registers{0x50607080, -0x51617181, 0x52627282, 0}

		pre := cpu.Register
		next_ip := cpu.Ip + 1

		err := cpu.Execute(inst)

		inst_str := fmt.Sprintf("%v (%#v) flag:%v\ncpu:%v", inst, inst, flag, cpu.String())

		source := func() (value int, ok bool) {
			switch inst.Source.Kind {
			case OPERAND_IMMEDIATE:
				return inst.Source.Value, true
			case OPERAND_REGISTER:
				if inst.Source.Register.Valid() {
					return pre[inst.Source.Register], true
				}
			}
			return
		}

		if err != nil {
			assert.ErrorIs(err, ErrOpcode{}, inst_str)
			switch {
			case errors.Is(err, ErrOpcodeArg1):
				assert.False(inst.Dest.Valid(), inst_str)
				assert.ErrorIs(err, ErrRegisterInvalid, inst_str)
			case errors.Is(err, ErrOpcodeArg2):
				_, ok := source()
				assert.False(ok, inst_str)
				assert.ErrorIs(err, ErrRegisterInvalid, inst_str)
			case errors.Is(err, ErrOpcodeCond):
				assert.Equal(KIND_JUMP, inst.Kind, inst_str)
				assert.False(inst.Cond.Valid(), inst_str)
			default:
				assert.NoError(err, inst_str)
			}
			// Failed instructions leave the machine untouched.
			assert.Equal(pre, cpu.Register, inst_str)
			assert.Equal(flag, cpu.Flag, inst_str)
			assert.Equal(0x10, cpu.Ip, inst_str)
			assert.Equal(0, cpu.Ticks, inst_str)
			return
		}

		expect := pre
		expect_flag := flag

		switch inst.Kind {
		case KIND_MOVE, KIND_INCREMENT, KIND_DECREMENT, KIND_COMPARE:
			assert.True(inst.Dest.Valid(), inst_str)
			value, ok := source()
			assert.True(ok, inst_str)
			switch inst.Kind {
			case KIND_MOVE:
				expect[inst.Dest] = value
			case KIND_INCREMENT:
				expect[inst.Dest] += value
			case KIND_DECREMENT:
				expect[inst.Dest] -= value
			case KIND_COMPARE:
				expect_flag = pre[inst.Dest] - value
			}
		case KIND_JUMP:
			var taken bool
			switch inst.Cond {
			case COND_ALWAYS:
				taken = true
			case COND_EQ:
				taken = flag == 0
			case COND_NE:
				taken = flag != 0
			case COND_LT:
				taken = flag < 0
			case COND_LE:
				taken = flag <= 0
			case COND_GT:
				taken = flag > 0
			case COND_GE:
				taken = flag >= 0
			default:
				assert.Fail("invalid cond executed", inst_str)
			}
			if taken {
				next_ip = 0x40
			}
		default:
			// Unknown kinds are skipped.
		}

		assert.Equal(expect, cpu.Register, inst_str)
		assert.Equal(expect_flag, cpu.Flag, inst_str)
		assert.Equal(next_ip, cpu.Ip, inst_str)
		assert.Equal(1, cpu.Ticks, inst_str)
	})
}
