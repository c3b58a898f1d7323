/*
Package errors implements custom error interfaces for the token swap
application.

The idea is to reuse as many errors from this package as possible and define
custom package errors only when absolutely necessary. x/offer and x/holding
declare their own codes for failures that a client must be able to tell apart.

If you want to register a custom error, use Register(code, description).
For reusing errors, use ErrXyz.New and ErrXyz.Newf.
Code stands for ABCI error code, which allows to distinguish types of errors
on the client side and act accordingly.

Create an error using ErrXyz.New("...") or errors.Wrap(err, "...") at the
point of failure to attach a stacktrace. Only the innermost wrap records it.

Once you have an error, you can use fmt to get more context
	%s is just the error message
	%+v is the message followed by the stack trace
*/
package errors
