package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/receipt-uploader/internal/receipt"
)

var _ = Describe("Client", func() {
	var (
		ghttpServer *ghttp.Server
		client      *Client
		ctx         context.Context
	)

	BeforeEach(func() {
		ghttpServer = ghttp.NewServer()
		var err error
		client, err = NewClient(ghttpServer.URL()+"/", WithTimeout(5*time.Second))
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	Describe("NewClient", func() {
		It("rejects relative urls", func() {
			_, err := NewClient("localhost:5000")
			Expect(err).To(HaveOccurred())
		})

		It("has no timeout by default", func() {
			c, err := NewClient(ghttpServer.URL())
			Expect(err).NotTo(HaveOccurred())
			Expect(c.client.Timeout).To(BeZero())
			Expect(c.client).NotTo(BeIdenticalTo(http.DefaultClient))
		})

		Context("with a custom http client", func() {
			var shared *http.Client

			BeforeEach(func() {
				shared = &http.Client{}
			})

			It("applies the timeout when the client comes first", func() {
				c, err := NewClient(ghttpServer.URL(), WithHTTPClient(shared), WithTimeout(3*time.Second))
				Expect(err).NotTo(HaveOccurred())
				Expect(c.client.Timeout).To(Equal(3 * time.Second))
				Expect(shared.Timeout).To(BeZero())
			})

			It("applies the timeout when the client comes last", func() {
				c, err := NewClient(ghttpServer.URL(), WithTimeout(3*time.Second), WithHTTPClient(shared))
				Expect(err).NotTo(HaveOccurred())
				Expect(c.client.Timeout).To(Equal(3 * time.Second))
				Expect(shared.Timeout).To(BeZero())
			})

			It("sends requests through the given transport", func() {
				var used bool
				shared.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
					used = true
					return http.DefaultTransport.RoundTrip(req)
				})
				ghttpServer.AppendHandlers(ghttp.RespondWith(http.StatusOK, `{"success": true, "receipts": []}`))

				c, err := NewClient(ghttpServer.URL(), WithHTTPClient(shared))
				Expect(err).NotTo(HaveOccurred())
				_, err = c.ListReceipts(context.Background())
				Expect(err).NotTo(HaveOccurred())
				Expect(used).To(BeTrue())
			})
		})
	})

	Describe("Upload", func() {
		var file *receipt.File

		BeforeEach(func() {
			file = &receipt.File{Name: `lunch "1".pdf`, ContentType: receipt.PDFContentType, Data: []byte("%PDF-1.4")}
		})

		When("the upload succeeds", func() {
			BeforeEach(func() {
				ghttpServer.AppendHandlers(ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodPost, "/api/upload"),
					func(w http.ResponseWriter, r *http.Request) {
						defer GinkgoRecover()
						f, header, err := r.FormFile("file")
						Expect(err).NotTo(HaveOccurred())
						defer f.Close()
						Expect(header.Filename).To(Equal(`lunch "1".pdf`))
						Expect(header.Header.Get("Content-Type")).To(Equal("application/pdf"))
						data, err := io.ReadAll(f)
						Expect(err).NotTo(HaveOccurred())
						Expect(string(data)).To(Equal("%PDF-1.4"))
					},
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"success": true, "file_id": 12}),
				))
			})

			It("returns the file id", func() {
				id, err := client.Upload(ctx, file)
				Expect(err).NotTo(HaveOccurred())
				Expect(id).To(Equal(receipt.ID("12")))
			})
		})

		When("the API reports a failure", func() {
			BeforeEach(func() {
				ghttpServer.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusBadRequest,
					map[string]any{"success": false, "error": "Invalid file type. Only PDF files are allowed."}))
			})

			It("returns the server message", func() {
				_, err := client.Upload(ctx, file)
				var apiErr *Error
				Expect(errors.As(err, &apiErr)).To(BeTrue())
				Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(apiErr.Op).To(Equal("upload"))
				Expect(err).To(MatchError("Invalid file type. Only PDF files are allowed."))
			})
		})

		When("the API fails without a body", func() {
			BeforeEach(func() {
				ghttpServer.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "boom"))
			})

			It("falls back to the default message", func() {
				_, err := client.Upload(ctx, file)
				Expect(err).To(MatchError("Failed to upload file"))
			})
		})

		When("no file is given", func() {
			It("returns an error without calling the API", func() {
				_, err := client.Upload(ctx, nil)
				Expect(err).To(HaveOccurred())
				Expect(ghttpServer.ReceivedRequests()).To(BeEmpty())
			})
		})
	})

	Describe("Validate", func() {
		When("the file is valid", func() {
			BeforeEach(func() {
				ghttpServer.AppendHandlers(ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodPost, "/api/validate"),
					ghttp.VerifyContentType("application/json"),
					ghttp.VerifyJSON(`{"file_id": 12}`),
					ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"success": true, "is_valid": true}),
				))
			})

			It("reports a valid file", func() {
				v, err := client.Validate(ctx, "12")
				Expect(err).NotTo(HaveOccurred())
				Expect(v.IsValid).To(BeTrue())
			})
		})

		When("the file is not a valid PDF", func() {
			BeforeEach(func() {
				ghttpServer.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK,
					map[string]any{"success": true, "is_valid": false, "error": "EOF marker not found"}))
			})

			It("is not an error", func() {
				v, err := client.Validate(ctx, "12")
				Expect(err).NotTo(HaveOccurred())
				Expect(v.IsValid).To(BeFalse())
				Expect(v.Reason).To(Equal("EOF marker not found"))
			})
		})

		When("success is false on a 200", func() {
			BeforeEach(func() {
				ghttpServer.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"success": false}))
			})

			It("returns the default message", func() {
				_, err := client.Validate(ctx, "12")
				Expect(err).To(MatchError("Failed to validate PDF"))
			})
		})
	})

	Describe("Process", func() {
		BeforeEach(func() {
			ghttpServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/process"),
				ghttp.VerifyJSON(`{"file_id": "abc"}`),
				ghttp.RespondWith(http.StatusOK, `{
					"success": true,
					"receipt_id": 7,
					"receipt_data": {"merchant_name": "Corner Shop", "total_amount": 12.5, "currency": "USD", "items": []}
				}`),
			))
		})

		It("returns the receipt id and data", func() {
			processed, err := client.Process(ctx, "abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(processed.ReceiptID).To(Equal(receipt.ID("7")))
			Expect(processed.Receipt.MerchantName).To(Equal("Corner Shop"))
			Expect(processed.Receipt.TotalAmount).To(Equal(12.5))
		})
	})

	Describe("ListReceipts", func() {
		When("receipts exist", func() {
			BeforeEach(func() {
				ghttpServer.AppendHandlers(ghttp.CombineHandlers(
					ghttp.VerifyRequest(http.MethodGet, "/api/receipts"),
					ghttp.RespondWith(http.StatusOK, `{"success": true, "receipts": [
						{"id": 1, "merchant_name": "A", "purchased_at": "2024-03-20T00:00:00", "total_amount": 3, "currency": "USD"},
						{"id": 2, "merchant_name": null, "purchased_at": null, "total_amount": null, "currency": null}
					]}`),
				))
			})

			It("returns the summaries in order", func() {
				receipts, err := client.ListReceipts(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).To(HaveLen(2))
				Expect(receipts[0].ID).To(Equal(receipt.ID("1")))
				Expect(receipts[1].MerchantName).To(BeEmpty())
			})
		})

		When("the list is missing", func() {
			BeforeEach(func() {
				ghttpServer.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"success": true}))
			})

			It("returns an empty slice", func() {
				receipts, err := client.ListReceipts(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).NotTo(BeNil())
				Expect(receipts).To(BeEmpty())
			})
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			var err error
			client, err = NewClient(ghttpServer.URL(), WithBasicAuth("user", "secret"))
			Expect(err).NotTo(HaveOccurred())
			ghttpServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyBasicAuth("user", "secret"),
				ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{"success": true, "receipts": []any{}}),
			))
		})

		It("sends the credentials", func() {
			_, err := client.ListReceipts(ctx)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("transport failures", func() {
		BeforeEach(func() {
			ghttpServer.AppendHandlers(func(w http.ResponseWriter, r *http.Request) {
				conn, _, err := w.(http.Hijacker).Hijack()
				if err == nil {
					conn.Close()
				}
			})
		})

		It("wraps the transport error", func() {
			_, err := client.ListReceipts(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(HavePrefix("calling list receipts"))
			var apiErr *Error
			Expect(errors.As(err, &apiErr)).To(BeFalse())
		})
	})

	Describe("DetailURL", func() {
		It("joins the base url and receipt id", func() {
			Expect(client.DetailURL("7")).To(Equal(ghttpServer.URL() + "/receipt/7"))
		})
	})
})

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
