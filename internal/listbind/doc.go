// Package listbind turns a query snapshot into display rows and keeps the
// alphabetic section index used for jump-to-letter scrolling.
package listbind
