package jinjaspan

// registerBuiltinTests installs the `is`-test catalog from SPEC_FULL.md §12.
func registerBuiltinTests(e *Environment) {
	e.tests["defined"] = testDefined
	e.tests["undefined"] = testUndefined
	e.tests["even"] = testEven
	e.tests["odd"] = testOdd
	e.tests["divisibleby"] = testDivisibleBy
	e.tests["in"] = testIn
	e.tests["string"] = testString
	e.tests["number"] = testNumber
	e.tests["sequence"] = testSequence
	e.tests["eq"] = testEq
	e.tests["ne"] = testNe
	e.tests["lt"] = testLt
	e.tests["gt"] = testGt
	e.tests["le"] = testLe
	e.tests["ge"] = testGe
}

func testDefined(in *Value, _ []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return !in.IsUndefined(), nil
}

func testUndefined(in *Value, _ []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return in.IsUndefined(), nil
}

func testEven(in *Value, _ []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return in.Int64()%2 == 0, nil
}

func testOdd(in *Value, _ []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return in.Int64()%2 != 0, nil
}

func testDivisibleBy(in *Value, args []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	n := arg(args, 0).Int64()
	if n == 0 {
		return false, nil
	}
	return in.Int64()%n == 0, nil
}

func testIn(in *Value, args []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return arg(args, 0).Contains(in), nil
}

func testString(in *Value, _ []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return in.IsString(), nil
}

func testNumber(in *Value, _ []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return in.IsNumber(), nil
}

func testSequence(in *Value, _ []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return in.IsList() || in.IsDict() || in.IsString(), nil
}

func testEq(in *Value, args []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return in.EqualValueTo(arg(args, 0)), nil
}

func testNe(in *Value, args []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return !in.EqualValueTo(arg(args, 0)), nil
}

func testLt(in *Value, args []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return compareValues(in, arg(args, 0)) < 0, nil
}

func testGt(in *Value, args []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return compareValues(in, arg(args, 0)) > 0, nil
}

func testLe(in *Value, args []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return compareValues(in, arg(args, 0)) <= 0, nil
}

func testGe(in *Value, args []*Value, _ map[string]*Value, _ *ExecutionContext) (bool, error) {
	return compareValues(in, arg(args, 0)) >= 0, nil
}

// compareValues orders two values for lt/gt/le/ge: numeric promotion per
// SPEC_FULL.md §13.3, lexical for strings, 0 (equal) otherwise.
func compareValues(a, b *Value) int {
	if a.IsNumber() && b.IsNumber() {
		af, bf := a.Float64(), b.Float64()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	if a.IsString() && b.IsString() {
		as, bs := a.RawString(), b.RawString()
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	return 0
}
