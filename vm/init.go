package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// LoadData copies words into memory starting at dataStart, the image
// built by encoder.BuildDataWords.
func (v *VM) LoadData(words []uint16, dataStart int) {
	for i, w := range words {
		v.Memory[dataStart+i] = w
	}
}

// RegisterName parses one of R0..R15 or an alias (Rt, FP_alt, PC_ret, FP,
// SP) into a register index, for the --init flag and the debugger's
// expression language.
func RegisterName(name string) (int, bool) {
	switch strings.ToUpper(name) {
	case "RT":
		return rtIndex, true
	case "FP_ALT":
		return fpAlt, true
	case "PC_RET":
		return pcRet, true
	case "FP":
		return fpIndex, true
	case "SP":
		return spIndex, true
	}
	if len(name) > 1 && (name[0] == 'R' || name[0] == 'r') {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 0 && n < NumRegisters {
			return n, true
		}
	}
	return 0, false
}

// ParseInit parses the --init flag's "R1=5,R2=10" syntax into register
// index/value pairs, applying them to v in order.
func (v *VM) ParseInit(spec string) error {
	if spec == "" {
		return nil
	}
	for _, assignment := range strings.Split(spec, ",") {
		assignment = strings.TrimSpace(assignment)
		if assignment == "" {
			continue
		}
		parts := strings.SplitN(assignment, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("--init: malformed assignment %q", assignment)
		}
		reg, ok := RegisterName(strings.TrimSpace(parts[0]))
		if !ok {
			return fmt.Errorf("--init: unknown register %q", parts[0])
		}
		val, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 0, 32)
		if err != nil {
			return fmt.Errorf("--init: invalid value %q for %s", parts[1], parts[0])
		}
		v.SetRegister(reg, uint16(val))
	}
	return nil
}
