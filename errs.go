// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

type constError string

func (e constError) Error() string {
	return string(e)
}

// ErrNoStopCondition is returned by [Until] and [UntilFolded] when no stop
// condition has been configured. Without an argument sequence to run dry,
// such a call could never return. The variants that take arguments
// ([UntilArgs] and [UntilFoldedArgs]) do not require a stop condition because
// exhaustion of the argument sequence always terminates sampling.
const ErrNoStopCondition = constError("sample: no stop condition configured")

// ErrInvalidOption is wrapped by all errors that report an option value
// outside its documented range. Use [errors.Is] to match it.
const ErrInvalidOption = constError("sample: invalid option")

const errLoopStopped = constError("sampling loop stopped")
